package services

import (
	"math"

	"quizone/models"
)

// Grade scores answers against the exam questions. answers maps a question id to the
// answer strings the student selected. A question is correct when the selected set equals
// the set of its correct answers; order and repeats do not matter.
func Grade(questions []models.Flashcard, answers map[string][]string) (int, []models.AnswerRecord) {
	records := make([]models.AnswerRecord, 0, len(questions))
	correct := 0
	for i := range questions {
		q := &questions[i]
		selected := append([]string{}, answers[q.ID]...)
		ok := sameSet(selected, q.CorrectValues())
		if ok {
			correct++
		}
		records = append(records, models.AnswerRecord{
			QuestionID:      q.ID,
			SelectedAnswers: selected,
			IsCorrect:       ok,
		})
	}
	return Score(correct, len(records)), records
}

// Score is the rounded percentage of correct answers; zero questions score 0.
func Score(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

func sameSet(a, b []string) bool {
	as := toSet(a)
	bs := toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if _, ok := bs[v]; !ok {
			return false
		}
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
