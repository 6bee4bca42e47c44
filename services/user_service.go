package services

import (
	"context"
	"errors"
	"strings"

	"quizone/models"
	"quizone/storage"
)

type UserService struct {
	store storage.UserStore
}

func NewUserService(store storage.UserStore) *UserService {
	return &UserService{store: store}
}

type UpdateProfileRequest struct {
	Username    string `json:"username" form:"username"`
	Email       string `json:"email" form:"email"`
	Role        string `json:"role" form:"role"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber"`
	Gender      string `json:"gender" form:"gender"`
	Image       string `json:"-" form:"-"`
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, lookupErr(err, CodeNotFound, "User not found.")
	}
	return user, nil
}

func (s *UserService) Search(ctx context.Context, query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, Invalid(CodeInvalidFields, "Search query is required.")
	}
	users, err := s.store.SearchUsers(ctx, query)
	if err != nil {
		return nil, Internal(err, "An error occurred during the search operation")
	}
	if len(users) == 0 {
		return nil, NotFound(CodeNotFound, "No users found.")
	}
	return users, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, Internal(err, "An error occurred while fetching users")
	}
	return orEmpty(users), nil
}

// UpdateProfile edits the caller's own profile. Only admins may change a role.
func (s *UserService) UpdateProfile(ctx context.Context, ident *models.Identity, userID string, req UpdateProfileRequest) (*models.User, error) {
	if userID != ident.ID {
		return nil, Forbidden(CodeForbidden, "Forbidden: You can only update your own profile.")
	}
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" {
		return nil, Invalid(CodeInvalidFields, "All fields are required.")
	}
	if req.Role != "" && !models.ValidRole(req.Role) {
		return nil, Invalid(CodeInvalidFields, "Invalid role.")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, CodeNotFound, "User not found.")
	}
	if req.Role != "" && req.Role != user.Role {
		if !ident.IsAdmin() {
			return nil, Forbidden(CodeForbidden, "Forbidden: You cannot change your own role.")
		}
		user.Role = req.Role
	}
	user.Username = username
	user.Email = email
	user.PhoneNumber = req.PhoneNumber
	user.Gender = req.Gender
	if req.Image != "" {
		user.Image = req.Image
	}

	if err := s.store.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, Conflict(CodeDuplicateUser, "Username or email already exists.")
		}
		return nil, lookupErr(err, CodeNotFound, "User not found.")
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, ident *models.Identity, userID string) (*models.User, error) {
	if userID != ident.ID && !ident.IsAdmin() {
		return nil, Forbidden(CodeForbidden, "Forbidden: You can only delete your own account or you must be an admin.")
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, CodeNotFound, "User not found.")
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return nil, lookupErr(err, CodeNotFound, "User not found.")
	}
	return user, nil
}
