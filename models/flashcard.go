package models

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

var (
	ErrAnswerCount         = errors.New("there must be between 2 and 4 answers")
	ErrEmptyAnswer         = errors.New("answers must not be empty")
	ErrNoCorrectAnswer     = errors.New("at least one correct answer is required")
	ErrAnswerIndex         = errors.New("all correct answer indices must be within the bounds of the answers array")
	ErrMissingPrompt       = errors.New("either questionText or questionImage is required")
	ErrMissingQuestionPack = errors.New("questionPackId is required")
)

type Flashcard struct {
	ID             string                      `json:"id" gorm:"primaryKey;type:uuid"`
	QuestionText   string                      `json:"questionText"`
	QuestionImage  string                      `json:"questionImage"`
	Answers        pq.StringArray              `json:"answers" gorm:"type:text[];not null" validate:"min=2,max=4,dive,required"`
	CorrectAnswers pq.Int64Array               `json:"correctAnswers" gorm:"type:integer[];not null" validate:"min=1"`
	QuestionPackID string                      `json:"questionPackId" gorm:"type:uuid;not null;index" validate:"required"`
	Comments       datatypes.JSONSlice[string] `json:"comments"`
	CreatedAt      time.Time                   `json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(flashcardStructLevel, Flashcard{})
	return v
}

func flashcardStructLevel(sl validator.StructLevel) {
	f := sl.Current().Interface().(Flashcard)
	if strings.TrimSpace(f.QuestionText) == "" && f.QuestionImage == "" {
		sl.ReportError(f.QuestionText, "QuestionText", "questionText", "prompt", "")
	}
	for _, idx := range f.CorrectAnswers {
		if idx < 0 || int(idx) >= len(f.Answers) {
			sl.ReportError(f.CorrectAnswers, "CorrectAnswers", "correctAnswers", "answer_index", "")
			return
		}
	}
}

// Validate checks the prompt, answer count and correct answer bounds.
func (f *Flashcard) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch {
	case fe.StructField() == "QuestionPackID":
		return ErrMissingQuestionPack
	case fe.Tag() == "prompt":
		return ErrMissingPrompt
	case fe.Tag() == "answer_index":
		return ErrAnswerIndex
	case fe.StructField() == "CorrectAnswers":
		return ErrNoCorrectAnswer
	case fe.Tag() == "required":
		return ErrEmptyAnswer
	default:
		return ErrAnswerCount
	}
}

// CorrectValues maps the stored correct indices onto the card's own answers.
func (f *Flashcard) CorrectValues() []string {
	values := make([]string, 0, len(f.CorrectAnswers))
	for _, idx := range f.CorrectAnswers {
		if idx >= 0 && int(idx) < len(f.Answers) {
			values = append(values, f.Answers[idx])
		}
	}
	return values
}

// QuestionView is a flashcard as served from exams and packs: correct answers are
// literal answer strings, never indices.
type QuestionView struct {
	ID             string    `json:"id"`
	QuestionText   string    `json:"questionText"`
	QuestionImage  string    `json:"questionImage"`
	Answers        []string  `json:"answers"`
	CorrectAnswers []string  `json:"correctAnswers"`
	QuestionPackID string    `json:"questionPackId"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (f *Flashcard) View() QuestionView {
	return QuestionView{
		ID:             f.ID,
		QuestionText:   f.QuestionText,
		QuestionImage:  f.QuestionImage,
		Answers:        append([]string{}, f.Answers...),
		CorrectAnswers: f.CorrectValues(),
		QuestionPackID: f.QuestionPackID,
		CreatedAt:      f.CreatedAt,
	}
}
