package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"quizone/models"
	"quizone/storage"
)

type FlashcardService struct {
	store storage.Store
}

func NewFlashcardService(store storage.Store) *FlashcardService {
	return &FlashcardService{store: store}
}

type FlashcardRequest struct {
	QuestionPackID string   `json:"questionPackId"`
	QuestionText   string   `json:"questionText"`
	Answers        []string `json:"answers"`
	CorrectAnswers []int64  `json:"correctAnswers"`
	QuestionImage  string   `json:"-"`
}

// UpdateFlashcardRequest leaves fields that are nil or empty unchanged.
type UpdateFlashcardRequest struct {
	QuestionText   *string  `json:"questionText"`
	Answers        []string `json:"answers"`
	CorrectAnswers []int64  `json:"correctAnswers"`
	QuestionImage  string   `json:"-"`
}

// PackWithFlashcards is a pack with its complete flashcard records.
type PackWithFlashcards struct {
	models.QuestionPack
	Questions []models.Flashcard `json:"questions"`
}

func (s *FlashcardService) Add(ctx context.Context, ident *models.Identity, req FlashcardRequest) (*models.Flashcard, error) {
	if req.QuestionPackID == "" {
		return nil, Invalid(CodeInvalidFields, models.ErrMissingQuestionPack.Error())
	}
	pack, err := s.store.GetQuestionPack(ctx, req.QuestionPackID)
	if err != nil {
		return nil, lookupErr(err, CodeNotFound, "QuestionPack not found")
	}
	if !pack.IsOwner(ident.ID) && !ident.IsAdmin() {
		return nil, Forbidden(CodeForbidden, "You are not authorized to add flashcards to this question pack")
	}

	card := &models.Flashcard{
		ID:             uuid.NewString(),
		QuestionText:   strings.TrimSpace(req.QuestionText),
		QuestionImage:  req.QuestionImage,
		Answers:        req.Answers,
		CorrectAnswers: req.CorrectAnswers,
		QuestionPackID: pack.ID,
		Comments:       []string{},
	}
	if err := card.Validate(); err != nil {
		return nil, Invalid(CodeInvalidFields, err.Error())
	}
	if err := s.store.AddFlashcard(ctx, card); err != nil {
		return nil, lookupErr(err, CodeNotFound, "QuestionPack not found")
	}
	return card, nil
}

func (s *FlashcardService) GetByQuestionPack(ctx context.Context, ident *models.Identity, packID string) (*PackWithFlashcards, error) {
	pack, err := s.store.GetQuestionPack(ctx, packID)
	if err != nil {
		return nil, lookupErr(err, CodeNotFound, "QuestionPack not found")
	}
	ok, err := canView(ctx, s.store, ident, pack)
	if err != nil {
		return nil, Internal(err, "An error occurred while retrieving the QuestionPack")
	}
	if !ok {
		return nil, Forbidden(CodeAccessDenied, "Access denied: Only the teacher can view this question pack.")
	}

	cards, err := s.store.GetFlashcards(ctx, pack.Questions)
	if err != nil {
		return nil, Internal(err, "An error occurred while retrieving the QuestionPack")
	}
	return &PackWithFlashcards{QuestionPack: *pack, Questions: cards}, nil
}

func (s *FlashcardService) Update(ctx context.Context, ident *models.Identity, id string, req UpdateFlashcardRequest) (*models.Flashcard, error) {
	card, err := s.store.GetFlashcard(ctx, id)
	if err != nil {
		return nil, lookupErr(err, CodeNotFound, "Flashcard not found")
	}
	pack, err := s.store.GetQuestionPack(ctx, card.QuestionPackID)
	if err != nil {
		return nil, lookupErr(err, CodeNotFound, "QuestionPack not found")
	}
	if !pack.IsOwner(ident.ID) && !ident.IsAdmin() {
		return nil, Forbidden(CodeForbidden, "You are not authorized to update this flashcard")
	}

	if req.QuestionText != nil {
		card.QuestionText = strings.TrimSpace(*req.QuestionText)
	}
	if req.QuestionImage != "" {
		card.QuestionImage = req.QuestionImage
	}
	if req.Answers != nil {
		card.Answers = req.Answers
	}
	if req.CorrectAnswers != nil {
		card.CorrectAnswers = req.CorrectAnswers
	}
	if err := card.Validate(); err != nil {
		return nil, Invalid(CodeInvalidFields, err.Error())
	}
	if err := s.store.SaveFlashcard(ctx, card); err != nil {
		return nil, lookupErr(err, CodeNotFound, "Flashcard not found")
	}
	return card, nil
}
