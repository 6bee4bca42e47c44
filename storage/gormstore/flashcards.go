package gormstore

import (
	"context"

	"gorm.io/gorm"

	"quizone/models"
	"quizone/storage"
)

func (s *Store) AddFlashcard(ctx context.Context, card *models.Flashcard) error {
	if !isUUID(card.QuestionPackID) {
		return storage.ErrNotFound
	}
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var pack models.QuestionPack
		if err := lockForUpdate(tx).First(&pack, "id = ?", card.QuestionPackID).Error; err != nil {
			return err
		}
		if err := tx.Create(card).Error; err != nil {
			return err
		}
		pack.Questions = append(pack.Questions, card.ID)
		return tx.Model(&pack).Update("questions", pack.Questions).Error
	})
	return translate(err, "add flashcard")
}

func (s *Store) GetFlashcard(ctx context.Context, id string) (*models.Flashcard, error) {
	if !isUUID(id) {
		return nil, storage.ErrNotFound
	}
	var card models.Flashcard
	if err := s.conn(ctx).First(&card, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get flashcard")
	}
	return &card, nil
}

func (s *Store) GetFlashcards(ctx context.Context, ids []string) ([]models.Flashcard, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return []models.Flashcard{}, nil
	}
	var cards []models.Flashcard
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&cards).Error; err != nil {
		return nil, translate(err, "get flashcards")
	}
	return reorder(cards, ids, func(f models.Flashcard) string { return f.ID }), nil
}

func (s *Store) SaveFlashcard(ctx context.Context, card *models.Flashcard) error {
	tx := s.conn(ctx).Model(card).Select("*").Omit("created_at").Updates(card)
	return checkAffected(tx, "save flashcard")
}

func (s *Store) CountFlashcards(ctx context.Context) (int64, error) {
	return s.count(ctx, &models.Flashcard{}, "count flashcards")
}
