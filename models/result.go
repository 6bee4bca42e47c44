package models

import (
	"time"

	"gorm.io/datatypes"
)

type Result struct {
	ID        string                            `json:"id" gorm:"primaryKey;type:uuid"`
	StudentID string                            `json:"studentId" gorm:"type:uuid;not null;uniqueIndex:idx_results_student_exam"`
	ExamID    string                            `json:"examId" gorm:"type:uuid;not null;uniqueIndex:idx_results_student_exam;index"`
	Score     int                               `json:"score" gorm:"not null"`
	Answers   datatypes.JSONSlice[AnswerRecord] `json:"answers"`
	CreatedAt time.Time                         `json:"createdAt"`
}

type AnswerRecord struct {
	QuestionID      string   `json:"questionId"`
	SelectedAnswers []string `json:"selectedAnswers"`
	IsCorrect       bool     `json:"isCorrect"`
}

// ResultWithStudent is what a teacher sees when reviewing an exam.
type ResultWithStudent struct {
	Result
	Student UserSummary `json:"student"`
}

// ResultWithExam is what a student sees when listing their own results.
type ResultWithExam struct {
	Result
	Exam         *Exam         `json:"exam"`
	QuestionPack *QuestionPack `json:"questionPack"`
}
