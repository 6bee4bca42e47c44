package models

import (
	"time"

	"gorm.io/datatypes"
)

const DefaultExamDuration = 60

// Exam is a snapshot of a question pack's flashcard references taken at creation time.
type Exam struct {
	ID             string                      `json:"id" gorm:"primaryKey;type:uuid"`
	Title          string                      `json:"title" gorm:"not null"`
	QuestionPackID string                      `json:"questionPackId" gorm:"type:uuid;not null;index"`
	ClassID        string                      `json:"classId" gorm:"type:uuid;not null;index"`
	Questions      datatypes.JSONSlice[string] `json:"questions"`
	Duration       int                         `json:"duration" gorm:"not null;default:60"`
	Instructions   string                      `json:"instructions"`
	CreatedAt      time.Time                   `json:"createdAt"`
}

// ExamView is an exam with its pack summary and expanded questions.
type ExamView struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	QuestionPack PackSummary    `json:"questionPack"`
	ClassID      string         `json:"classId"`
	Questions    []QuestionView `json:"questions"`
	Duration     int            `json:"duration"`
	Instructions string         `json:"instructions"`
	CreatedAt    time.Time      `json:"createdAt"`
}
