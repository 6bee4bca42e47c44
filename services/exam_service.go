package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"quizone/models"
	"quizone/storage"
)

type ExamService struct {
	store storage.Store
}

func NewExamService(store storage.Store) *ExamService {
	return &ExamService{store: store}
}

type CreateExamRequest struct {
	ClassID        string `json:"classId" binding:"required"`
	QuestionPackID string `json:"questionPackId" binding:"required"`
	Title          string `json:"title"`
	Duration       int    `json:"duration"`
	Instructions   string `json:"instructions"`
}

// CreateExam snapshots the pack's current flashcard list into a new exam for the class.
// The requester must own the pack and teach the class.
func (s *ExamService) CreateExam(ctx context.Context, requesterID string, req CreateExamRequest) (*models.Exam, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, Invalid(CodeInvalidFields, "title is required")
	}

	pack, err := s.store.GetQuestionPack(ctx, req.QuestionPackID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, Internal(err, "An error occurred while adding the exam")
	}
	if pack == nil || !pack.IsOwner(requesterID) {
		return nil, Forbidden(CodeForbidden, "You do not own this question pack.")
	}

	class, err := s.store.GetClass(ctx, req.ClassID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, Internal(err, "An error occurred while adding the exam")
	}
	if class == nil || !class.IsTeacher(requesterID) {
		return nil, Forbidden(CodeForbidden, "You are not authorized to create exams for this class.")
	}

	duration := req.Duration
	if duration <= 0 {
		duration = models.DefaultExamDuration
	}
	exam := &models.Exam{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(req.Title),
		QuestionPackID: pack.ID,
		ClassID:        class.ID,
		Questions:      append([]string{}, pack.Questions...),
		Duration:       duration,
		Instructions:   req.Instructions,
	}
	if err := s.store.CreateExam(ctx, exam); err != nil {
		return nil, Internal(err, "An error occurred while adding the exam")
	}
	return exam, nil
}

func (s *ExamService) GetExam(ctx context.Context, examID string) (*models.ExamView, error) {
	exam, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return nil, lookupErr(err, CodeNotFound, "Exam not found.")
	}
	return s.view(ctx, exam)
}

// GetExamByQuestionPack returns ErrNoExam when the pack has none.
func (s *ExamService) GetExamByQuestionPack(ctx context.Context, packID string) (*models.ExamView, error) {
	exam, err := s.store.GetExamByQuestionPack(ctx, packID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoExam
	}
	if err != nil {
		return nil, Internal(err, "An error occurred while fetching the exam")
	}
	return s.view(ctx, exam)
}

func (s *ExamService) view(ctx context.Context, exam *models.Exam) (*models.ExamView, error) {
	summary := models.PackSummary{ID: exam.QuestionPackID}
	pack, err := s.store.GetQuestionPack(ctx, exam.QuestionPackID)
	switch {
	case err == nil:
		summary = pack.Summary()
	case !errors.Is(err, storage.ErrNotFound):
		return nil, Internal(err, "An error occurred while fetching the exam")
	}

	cards, err := s.store.GetFlashcards(ctx, exam.Questions)
	if err != nil {
		return nil, Internal(err, "An error occurred while fetching the exam")
	}
	questions := make([]models.QuestionView, 0, len(cards))
	for i := range cards {
		questions = append(questions, cards[i].View())
	}

	return &models.ExamView{
		ID:           exam.ID,
		Title:        exam.Title,
		QuestionPack: summary,
		ClassID:      exam.ClassID,
		Questions:    questions,
		Duration:     exam.Duration,
		Instructions: exam.Instructions,
		CreatedAt:    exam.CreatedAt,
	}, nil
}
