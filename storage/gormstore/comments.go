package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"quizone/models"
	"quizone/storage"
)

func (s *Store) AddComment(ctx context.Context, comment *models.Comment) error {
	if !isUUID(comment.FlashcardID) {
		return storage.ErrNotFound
	}
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var card models.Flashcard
		if err := lockForUpdate(tx).First(&card, "id = ?", comment.FlashcardID).Error; err != nil {
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		card.Comments = append(card.Comments, comment.ID)
		return tx.Model(&card).Update("comments", card.Comments).Error
	})
	return translate(err, "add comment")
}

func (s *Store) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	if !isUUID(id) {
		return nil, storage.ErrNotFound
	}
	var comment models.Comment
	if err := s.conn(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get comment")
	}
	return &comment, nil
}

func (s *Store) UpdateComment(ctx context.Context, id string, fn func(*models.Comment) error) (*models.Comment, error) {
	if !isUUID(id) {
		return nil, storage.ErrNotFound
	}
	var comment models.Comment
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&comment, "id = ?", id).Error; err != nil {
			return err
		}
		if err := fn(&comment); err != nil {
			return err
		}
		return tx.Save(&comment).Error
	})
	if err != nil {
		return nil, translate(err, "update comment")
	}
	return &comment, nil
}

func (s *Store) ListComments(ctx context.Context, flashcardID string, offset, limit int) ([]models.Comment, error) {
	if !isUUID(flashcardID) || offset < 0 {
		return []models.Comment{}, nil
	}
	var comments []models.Comment
	q := s.conn(ctx).
		Where("flashcard_id = ?", flashcardID).
		Order("created_at DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&comments).Error; err != nil {
		return nil, translate(err, "list comments")
	}
	return comments, nil
}

func (s *Store) CountComments(ctx context.Context, flashcardID string) (int64, error) {
	if !isUUID(flashcardID) {
		return 0, nil
	}
	var n int64
	err := s.conn(ctx).Model(&models.Comment{}).Where("flashcard_id = ?", flashcardID).Count(&n).Error
	if err != nil {
		return 0, translate(err, "count comments")
	}
	return n, nil
}

func (s *Store) RemoveComment(ctx context.Context, comment *models.Comment) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Comment{}, "id = ?", comment.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		var card models.Flashcard
		err := lockForUpdate(tx).First(&card, "id = ?", comment.FlashcardID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		card.Comments = models.Without(card.Comments, comment.ID)
		return tx.Model(&card).Update("comments", card.Comments).Error
	})
	return translate(err, "remove comment")
}
