package gormstore

import (
	"context"

	"gorm.io/gorm"

	"quizone/models"
	"quizone/storage"
)

func (s *Store) CreateClass(ctx context.Context, class *models.Class) error {
	return translate(s.conn(ctx).Create(class).Error, "create class")
}

func (s *Store) GetClass(ctx context.Context, id string) (*models.Class, error) {
	if !isUUID(id) {
		return nil, storage.ErrNotFound
	}
	var class models.Class
	if err := s.conn(ctx).First(&class, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get class")
	}
	return &class, nil
}

func (s *Store) GetClassByInvitation(ctx context.Context, token string) (*models.Class, error) {
	var class models.Class
	if err := s.conn(ctx).First(&class, "invitation_token = ?", token).Error; err != nil {
		return nil, translate(err, "get class by invitation")
	}
	return &class, nil
}

func (s *Store) UpdateClass(ctx context.Context, id string, fn func(*models.Class) error) (*models.Class, error) {
	if !isUUID(id) {
		return nil, storage.ErrNotFound
	}
	var class models.Class
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&class, "id = ?", id).Error; err != nil {
			return err
		}
		if err := fn(&class); err != nil {
			return err
		}
		return tx.Save(&class).Error
	})
	if err != nil {
		return nil, translate(err, "update class")
	}
	return &class, nil
}

func (s *Store) DeleteClass(ctx context.Context, id string) error {
	if !isUUID(id) {
		return storage.ErrNotFound
	}
	return checkAffected(s.conn(ctx).Delete(&models.Class{}, "id = ?", id), "delete class")
}

func (s *Store) ListClassesForUser(ctx context.Context, userID string) ([]models.Class, error) {
	if !isUUID(userID) {
		return []models.Class{}, nil
	}
	var classes []models.Class
	err := s.conn(ctx).
		Where("teacher_id = ? OR students::jsonb @> ?::jsonb", userID, jsonContains(userID)).
		Order("created_at").
		Find(&classes).Error
	if err != nil {
		return nil, translate(err, "list classes")
	}
	return classes, nil
}
