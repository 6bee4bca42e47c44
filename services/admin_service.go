package services

import (
	"context"

	"quizone/models"
	"quizone/storage"
)

type PresenceCounter interface {
	OnlineCount() int
}

type AdminService struct {
	store    storage.Store
	presence PresenceCounter
}

func NewAdminService(store storage.Store, presence PresenceCounter) *AdminService {
	return &AdminService{store: store, presence: presence}
}

type Dashboard struct {
	UserCount         int64 `json:"userCount"`
	FlashcardCount    int64 `json:"flashcardCount"`
	QuestionPackCount int64 `json:"questionPackCount"`
	OnlineUserCount   int   `json:"onlineUserCount"`
}

func (s *AdminService) Dashboard(ctx context.Context, ident *models.Identity) (*Dashboard, error) {
	if !ident.IsAdmin() {
		return nil, Forbidden(CodeForbidden, "Access denied: Only admins can view the dashboard")
	}

	var (
		d   Dashboard
		err error
	)
	if d.UserCount, err = s.store.CountUsers(ctx); err != nil {
		return nil, Internal(err, "An error occurred while fetching dashboard data")
	}
	if d.FlashcardCount, err = s.store.CountFlashcards(ctx); err != nil {
		return nil, Internal(err, "An error occurred while fetching dashboard data")
	}
	if d.QuestionPackCount, err = s.store.CountQuestionPacks(ctx); err != nil {
		return nil, Internal(err, "An error occurred while fetching dashboard data")
	}
	if s.presence != nil {
		d.OnlineUserCount = s.presence.OnlineCount()
	}
	return &d, nil
}
