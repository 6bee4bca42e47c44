package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"quizone/models"
	"quizone/storage"
)

type QuestionPackService struct {
	store storage.Store
}

func NewQuestionPackService(store storage.Store) *QuestionPackService {
	return &QuestionPackService{store: store}
}

type QuestionPackRequest struct {
	Title        string `json:"title" form:"title"`
	Description  string `json:"description" form:"description"`
	Semester     string `json:"semester" form:"semester"`
	Subject      string `json:"subject" form:"subject"`
	ClassID      string `json:"classId" form:"classId"`
	IsPublic     *bool  `json:"isPublic" form:"isPublic"`
	ImagePreview string `json:"-" form:"-"`
}

func (r *QuestionPackRequest) validate() error {
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Semester) == "" || strings.TrimSpace(r.Subject) == "" {
		return Invalid(CodeInvalidFields, "All required fields must be provided")
	}
	return nil
}

// PackDetail is a pack with its flashcards' correct answers spelled out.
type PackDetail struct {
	models.QuestionPack
	Teacher   *models.UserSummary   `json:"teacher,omitempty"`
	Questions []models.QuestionView `json:"questions"`
}

// canView applies the pack visibility rules: public packs are open to everyone, private
// packs to their owner and admins, class packs also to the class members.
func canView(ctx context.Context, store storage.ClassStore, ident *models.Identity, pack *models.QuestionPack) (bool, error) {
	if pack.IsPublic || pack.IsOwner(ident.ID) || ident.IsAdmin() {
		return true, nil
	}
	if pack.IsPrivate() {
		return false, nil
	}
	class, err := store.GetClass(ctx, *pack.ClassID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return class.IsMember(ident.ID), nil
}

func (s *QuestionPackService) checkClass(ctx context.Context, classID string) error {
	if classID == "" {
		return nil
	}
	_, err := s.store.GetClass(ctx, classID)
	return lookupErr(err, CodeClass, "Class not found")
}

func (s *QuestionPackService) Create(ctx context.Context, ident *models.Identity, req QuestionPackRequest) (*models.QuestionPack, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if !ident.CanAuthor() {
		return nil, Forbidden(CodeForbidden, "Only teachers can create question packs")
	}
	if err := s.checkClass(ctx, req.ClassID); err != nil {
		return nil, err
	}

	pack := &models.QuestionPack{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		TeacherID:    ident.ID,
		Semester:     strings.TrimSpace(req.Semester),
		Subject:      strings.TrimSpace(req.Subject),
		ImagePreview: req.ImagePreview,
		IsPublic:     req.IsPublic != nil && *req.IsPublic,
		Questions:    []string{},
	}
	if req.ClassID != "" {
		classID := req.ClassID
		pack.ClassID = &classID
	}
	if err := s.store.CreateQuestionPack(ctx, pack); err != nil {
		return nil, Internal(err, "An error occurred while saving the question pack")
	}
	return pack, nil
}

func (s *QuestionPackService) ListPublic(ctx context.Context) ([]models.QuestionPack, error) {
	packs, err := s.store.ListPublicQuestionPacks(ctx)
	if err != nil {
		return nil, Internal(err, "An error occurred while fetching the question packs")
	}
	return orEmpty(packs), nil
}

func (s *QuestionPackService) ListAll(ctx context.Context, ident *models.Identity) ([]models.QuestionPack, error) {
	if !ident.IsAdmin() {
		return nil, Forbidden(CodeForbidden, "Only admin can access this.")
	}
	packs, err := s.store.ListQuestionPacks(ctx)
	if err != nil {
		return nil, Internal(err, "An error occurred while fetching the question packs")
	}
	return orEmpty(packs), nil
}

// Search matches title, semester or subject among the packs the caller may list.
func (s *QuestionPackService) Search(ctx context.Context, ident *models.Identity, query string) ([]models.QuestionPack, error) {
	packs, err := s.store.SearchQuestionPacks(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, Internal(err, "An error occurred while searching the question packs")
	}
	out := make([]models.QuestionPack, 0, len(packs))
	for _, p := range packs {
		if p.IsPublic || (ident != nil && (p.IsOwner(ident.ID) || ident.IsAdmin())) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *QuestionPackService) ListByTeacher(ctx context.Context, ident *models.Identity, teacherID string) ([]models.QuestionPack, error) {
	if !ident.CanAuthor() {
		return nil, Forbidden(CodeForbidden, "You are not authorized to view question packs")
	}
	packs, err := s.store.ListQuestionPacksByTeacher(ctx, teacherID)
	if err != nil {
		return nil, Internal(err, "An error occurred while fetching the question packs")
	}
	return orEmpty(packs), nil
}

func (s *QuestionPackService) Get(ctx context.Context, ident *models.Identity, id string) (*PackDetail, error) {
	pack, err := s.store.GetQuestionPack(ctx, id)
	if err != nil {
		return nil, lookupErr(err, CodeNotFound, "Question pack not found")
	}
	ok, err := canView(ctx, s.store, ident, pack)
	if err != nil {
		return nil, Internal(err, "An error occurred while fetching the question pack")
	}
	if !ok {
		return nil, Forbidden(CodeAccessDenied, "Access denied: Only the teacher can view this question pack.")
	}

	cards, err := s.store.GetFlashcards(ctx, pack.Questions)
	if err != nil {
		return nil, Internal(err, "An error occurred while fetching the question pack")
	}
	detail := &PackDetail{QuestionPack: *pack, Questions: make([]models.QuestionView, 0, len(cards))}
	for i := range cards {
		detail.Questions = append(detail.Questions, cards[i].View())
	}
	if teacher, err := s.store.GetUser(ctx, pack.TeacherID); err == nil {
		summary := teacher.Summary()
		detail.Teacher = &summary
	}
	return detail, nil
}

func (s *QuestionPackService) Update(ctx context.Context, ident *models.Identity, id string, req QuestionPackRequest) (*models.QuestionPack, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	pack, err := s.store.GetQuestionPack(ctx, id)
	if err != nil {
		return nil, lookupErr(err, CodeNotFound, "Question pack not found")
	}
	if !pack.IsOwner(ident.ID) && !ident.IsAdmin() {
		return nil, Forbidden(CodeForbidden, "You are not authorized to update this question pack")
	}
	if err := s.checkClass(ctx, req.ClassID); err != nil {
		return nil, err
	}

	pack.Title = strings.TrimSpace(req.Title)
	pack.Semester = strings.TrimSpace(req.Semester)
	pack.Subject = strings.TrimSpace(req.Subject)
	if req.Description != "" {
		pack.Description = req.Description
	}
	if req.ImagePreview != "" {
		pack.ImagePreview = req.ImagePreview
	}
	if req.ClassID != "" {
		classID := req.ClassID
		pack.ClassID = &classID
	}
	if req.IsPublic != nil {
		pack.IsPublic = *req.IsPublic
	}
	if err := s.store.SaveQuestionPack(ctx, pack); err != nil {
		return nil, Internal(err, "An error occurred while updating the question pack")
	}
	return pack, nil
}

func (s *QuestionPackService) Delete(ctx context.Context, ident *models.Identity, id string) error {
	pack, err := s.store.GetQuestionPack(ctx, id)
	if err != nil {
		return lookupErr(err, CodeNotFound, "Question pack not found")
	}
	if !pack.IsOwner(ident.ID) && !ident.IsAdmin() {
		return Forbidden(CodeForbidden, "You are not authorized to delete this question pack")
	}
	if err := s.store.DeleteQuestionPack(ctx, id); err != nil {
		return lookupErr(err, CodeNotFound, "Question pack not found")
	}
	return nil
}

// AddToClass attaches the pack to the class. added is false when it was already there.
func (s *QuestionPackService) AddToClass(ctx context.Context, ident *models.Identity, classID, packID string) (class *models.Class, added bool, err error) {
	class, err = s.store.GetClass(ctx, classID)
	if err != nil {
		return nil, false, lookupErr(err, CodeNotFound, "Class not found")
	}
	if !class.IsTeacher(ident.ID) {
		return nil, false, Forbidden(CodeForbidden, "You are not authorized to add question packs to this class")
	}
	if _, err := s.store.GetQuestionPack(ctx, packID); err != nil {
		return nil, false, lookupErr(err, CodeNotFound, "Question pack not found")
	}

	class, err = s.store.UpdateClass(ctx, classID, func(c *models.Class) error {
		if c.HasQuestionPack(packID) {
			return nil
		}
		c.QuestionPacks = append(c.QuestionPacks, packID)
		added = true
		return nil
	})
	if err != nil {
		return nil, false, lookupErr(err, CodeNotFound, "Class not found")
	}
	return class, added, nil
}

func (s *QuestionPackService) RemoveFromClass(ctx context.Context, ident *models.Identity, classID, packID string) (*models.Class, error) {
	class, err := s.store.GetClass(ctx, classID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, Internal(err, "An error occurred while removing the question pack from the class")
	}
	if class == nil || !class.IsTeacher(ident.ID) {
		return nil, Forbidden(CodeForbidden, "You are not authorized to remove question packs from this class")
	}

	return updateClass(ctx, s.store, classID, func(c *models.Class) error {
		if !c.HasQuestionPack(packID) {
			return NotFound(CodePackLink, "Question pack not found in this class")
		}
		c.QuestionPacks = models.Without(c.QuestionPacks, packID)
		return nil
	})
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
