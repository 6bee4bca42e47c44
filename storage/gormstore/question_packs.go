package gormstore

import (
	"context"

	"quizone/models"
	"quizone/storage"
)

func (s *Store) CreateQuestionPack(ctx context.Context, pack *models.QuestionPack) error {
	return translate(s.conn(ctx).Create(pack).Error, "create question pack")
}

func (s *Store) GetQuestionPack(ctx context.Context, id string) (*models.QuestionPack, error) {
	if !isUUID(id) {
		return nil, storage.ErrNotFound
	}
	var pack models.QuestionPack
	if err := s.conn(ctx).First(&pack, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get question pack")
	}
	return &pack, nil
}

func (s *Store) SaveQuestionPack(ctx context.Context, pack *models.QuestionPack) error {
	tx := s.conn(ctx).Model(pack).Select("*").Omit("created_at").Updates(pack)
	return checkAffected(tx, "save question pack")
}

func (s *Store) DeleteQuestionPack(ctx context.Context, id string) error {
	if !isUUID(id) {
		return storage.ErrNotFound
	}
	return checkAffected(s.conn(ctx).Delete(&models.QuestionPack{}, "id = ?", id), "delete question pack")
}

func (s *Store) findPacks(ctx context.Context, op string, query any, args ...any) ([]models.QuestionPack, error) {
	var packs []models.QuestionPack
	q := s.conn(ctx).Order("created_at")
	if query != nil {
		q = q.Where(query, args...)
	}
	if err := q.Find(&packs).Error; err != nil {
		return nil, translate(err, op)
	}
	return packs, nil
}

func (s *Store) ListPublicQuestionPacks(ctx context.Context) ([]models.QuestionPack, error) {
	return s.findPacks(ctx, "list public question packs", "is_public = ?", true)
}

func (s *Store) ListQuestionPacks(ctx context.Context) ([]models.QuestionPack, error) {
	return s.findPacks(ctx, "list question packs", nil)
}

func (s *Store) ListQuestionPacksByTeacher(ctx context.Context, teacherID string) ([]models.QuestionPack, error) {
	if !isUUID(teacherID) {
		return []models.QuestionPack{}, nil
	}
	return s.findPacks(ctx, "list teacher question packs", "teacher_id = ?", teacherID)
}

func (s *Store) SearchQuestionPacks(ctx context.Context, query string) ([]models.QuestionPack, error) {
	p := likePattern(query)
	return s.findPacks(ctx, "search question packs", "title ILIKE ? OR semester ILIKE ? OR subject ILIKE ?", p, p, p)
}

func (s *Store) CountQuestionPacks(ctx context.Context) (int64, error) {
	return s.count(ctx, &models.QuestionPack{}, "count question packs")
}
