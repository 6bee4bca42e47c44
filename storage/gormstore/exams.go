package gormstore

import (
	"context"

	"gorm.io/gorm"

	"quizone/models"
	"quizone/storage"
)

func (s *Store) CreateExam(ctx context.Context, exam *models.Exam) error {
	if !isUUID(exam.ClassID) {
		return storage.ErrNotFound
	}
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var class models.Class
		if err := lockForUpdate(tx).First(&class, "id = ?", exam.ClassID).Error; err != nil {
			return err
		}
		if err := tx.Create(exam).Error; err != nil {
			return err
		}
		class.Exams = append(class.Exams, exam.ID)
		return tx.Model(&class).Update("exams", class.Exams).Error
	})
	return translate(err, "create exam")
}

func (s *Store) GetExam(ctx context.Context, id string) (*models.Exam, error) {
	if !isUUID(id) {
		return nil, storage.ErrNotFound
	}
	var exam models.Exam
	if err := s.conn(ctx).First(&exam, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get exam")
	}
	return &exam, nil
}

func (s *Store) GetExamByQuestionPack(ctx context.Context, packID string) (*models.Exam, error) {
	if !isUUID(packID) {
		return nil, storage.ErrNotFound
	}
	var exam models.Exam
	err := s.conn(ctx).Where("question_pack_id = ?", packID).Order("created_at").First(&exam).Error
	if err != nil {
		return nil, translate(err, "get exam by question pack")
	}
	return &exam, nil
}

func (s *Store) CreateResult(ctx context.Context, result *models.Result) error {
	return translate(s.conn(ctx).Create(result).Error, "create result")
}

func (s *Store) ListResultsByExam(ctx context.Context, examID string) ([]models.Result, error) {
	if !isUUID(examID) {
		return []models.Result{}, nil
	}
	var results []models.Result
	if err := s.conn(ctx).Where("exam_id = ?", examID).Order("created_at").Find(&results).Error; err != nil {
		return nil, translate(err, "list exam results")
	}
	return results, nil
}

func (s *Store) ListResultsByStudent(ctx context.Context, studentID string) ([]models.Result, error) {
	if !isUUID(studentID) {
		return []models.Result{}, nil
	}
	var results []models.Result
	if err := s.conn(ctx).Where("student_id = ?", studentID).Order("created_at").Find(&results).Error; err != nil {
		return nil, translate(err, "list student results")
	}
	return results, nil
}
