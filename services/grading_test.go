package services

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"quizone/models"
)

func TestScore(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{3, 4, 75},
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{4, 4, 100},
		{0, 5, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Score(tt.correct, tt.total), "%d/%d", tt.correct, tt.total)
	}
}

func gradingQuestions() []models.Flashcard {
	return []models.Flashcard{
		{ID: "q1", Answers: pq.StringArray{"a", "b", "c"}, CorrectAnswers: pq.Int64Array{0}},
		{ID: "q2", Answers: pq.StringArray{"a", "b", "c"}, CorrectAnswers: pq.Int64Array{0, 2}},
		{ID: "q3", Answers: pq.StringArray{"x", "y"}, CorrectAnswers: pq.Int64Array{1}},
		{ID: "q4", Answers: pq.StringArray{"x", "y"}, CorrectAnswers: pq.Int64Array{0}},
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		name    string
		answers map[string][]string
		score   int
		correct []bool
	}{
		{
			name:    "three of four",
			answers: map[string][]string{"q1": {"a"}, "q2": {"c", "a"}, "q3": {"y"}, "q4": {"y"}},
			score:   75,
			correct: []bool{true, true, true, false},
		},
		{
			name:    "subset of a multi answer is wrong",
			answers: map[string][]string{"q1": {"a"}, "q2": {"a"}, "q3": {"y"}, "q4": {"x"}},
			score:   75,
			correct: []bool{true, false, true, true},
		},
		{
			name:    "superset is wrong",
			answers: map[string][]string{"q1": {"a", "b"}},
			score:   0,
			correct: []bool{false, false, false, false},
		},
		{
			name:    "repeated selections collapse",
			answers: map[string][]string{"q1": {"a", "a"}, "q2": {"a", "c", "a"}},
			score:   50,
			correct: []bool{true, true, false, false},
		},
		{
			name:    "no answers",
			answers: nil,
			score:   0,
			correct: []bool{false, false, false, false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, records := Grade(gradingQuestions(), tt.answers)
			assert.Equal(t, tt.score, score)
			got := make([]bool, 0, len(records))
			for _, r := range records {
				got = append(got, r.IsCorrect)
			}
			assert.Equal(t, tt.correct, got)
		})
	}
}

func TestGradeIsIdempotent(t *testing.T) {
	answers := map[string][]string{"q1": {"a"}, "q2": {"c", "a"}, "q3": {"x"}}
	score1, records1 := Grade(gradingQuestions(), answers)
	score2, records2 := Grade(gradingQuestions(), answers)

	assert.Equal(t, score1, score2)
	assert.Equal(t, records1, records2)
}

func TestGradeEmptyExam(t *testing.T) {
	score, records := Grade(nil, map[string][]string{"q1": {"a"}})
	assert.Equal(t, 0, score)
	assert.Empty(t, records)
}
