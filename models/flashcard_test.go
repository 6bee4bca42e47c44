package models

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func validCard() Flashcard {
	return Flashcard{
		QuestionText:   "2 + 2 = ?",
		Answers:        pq.StringArray{"3", "4", "5", "22"},
		CorrectAnswers: pq.Int64Array{1},
		QuestionPackID: "pack-1",
	}
}

func TestFlashcardValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Flashcard)
		want   error
	}{
		{"valid card", func(f *Flashcard) {}, nil},
		{"image instead of text", func(f *Flashcard) {
			f.QuestionText = ""
			f.QuestionImage = "http://img/1.png"
		}, nil},
		{"last index in bounds", func(f *Flashcard) { f.CorrectAnswers = pq.Int64Array{3} }, nil},
		{"several correct answers", func(f *Flashcard) { f.CorrectAnswers = pq.Int64Array{0, 2} }, nil},
		{"index equal to answer count", func(f *Flashcard) { f.CorrectAnswers = pq.Int64Array{4} }, ErrAnswerIndex},
		{"negative index", func(f *Flashcard) { f.CorrectAnswers = pq.Int64Array{-1} }, ErrAnswerIndex},
		{"no correct answer", func(f *Flashcard) { f.CorrectAnswers = pq.Int64Array{} }, ErrNoCorrectAnswer},
		{"one answer", func(f *Flashcard) {
			f.Answers = pq.StringArray{"4"}
			f.CorrectAnswers = pq.Int64Array{0}
		}, ErrAnswerCount},
		{"five answers", func(f *Flashcard) { f.Answers = pq.StringArray{"1", "2", "3", "4", "5"} }, ErrAnswerCount},
		{"empty answer", func(f *Flashcard) { f.Answers = pq.StringArray{"4", ""} }, ErrEmptyAnswer},
		{"no prompt", func(f *Flashcard) { f.QuestionText = "  " }, ErrMissingPrompt},
		{"no pack", func(f *Flashcard) { f.QuestionPackID = "" }, ErrMissingQuestionPack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := validCard()
			tt.modify(&card)
			assert.Equal(t, tt.want, card.Validate())
		})
	}
}

func TestFlashcardView(t *testing.T) {
	card := validCard()
	card.ID = "card-1"
	card.CorrectAnswers = pq.Int64Array{1, 3}

	view := card.View()

	assert.Equal(t, "card-1", view.ID)
	assert.Equal(t, []string{"4", "22"}, view.CorrectAnswers)
	assert.Equal(t, []string{"3", "4", "5", "22"}, view.Answers)

	view.Answers[0] = "changed"
	assert.Equal(t, "3", card.Answers[0], "view must not alias the card's answers")
}

func TestPairKey(t *testing.T) {
	assert.Equal(t, PairKey("a", "b"), PairKey("b", "a"))
	assert.Equal(t, "a:b", PairKey("b", "a"))
	assert.NotEqual(t, PairKey("a", "b"), PairKey("a", "c"))
}

func TestClassMembership(t *testing.T) {
	class := Class{TeacherID: "t1", Students: []string{"s1", "s2"}}

	assert.True(t, class.IsMember("t1"))
	assert.True(t, class.IsMember("s2"))
	assert.False(t, class.HasStudent("t1"))
	assert.False(t, class.IsMember("x"))
	assert.Equal(t, []string{"s2"}, Without(class.Students, "s1"))
}
