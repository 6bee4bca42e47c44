package gormstore

import (
	"context"

	"quizone/models"
	"quizone/storage"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.conn(ctx).Create(user).Error, "create user")
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	if !isUUID(id) {
		return nil, storage.ErrNotFound
	}
	var user models.User
	if err := s.conn(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get user")
	}
	return &user, nil
}

func (s *Store) GetUsers(ctx context.Context, ids []string) ([]models.User, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, translate(err, "get users")
	}
	return reorder(users, ids, func(u models.User) string { return u.ID }), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, "LOWER(email) = LOWER(?)", email).Error; err != nil {
		return nil, translate(err, "get user by email")
	}
	return &user, nil
}

func (s *Store) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := s.conn(ctx).
		Where("LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?)", login, login).
		First(&user).Error
	if err != nil {
		return nil, translate(err, "get user by login")
	}
	return &user, nil
}

func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	tx := s.conn(ctx).Model(user).Select("*").Omit("created_at").Updates(user)
	return checkAffected(tx, "save user")
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if !isUUID(id) {
		return storage.ErrNotFound
	}
	return checkAffected(s.conn(ctx).Delete(&models.User{}, "id = ?", id), "delete user")
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.conn(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, translate(err, "list users")
	}
	return users, nil
}

func (s *Store) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	var users []models.User
	p := likePattern(query)
	err := s.conn(ctx).
		Where("username ILIKE ? OR email ILIKE ? OR phone_number ILIKE ?", p, p, p).
		Order("created_at").
		Find(&users).Error
	if err != nil {
		return nil, translate(err, "search users")
	}
	return users, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return s.count(ctx, &models.User{}, "count users")
}
