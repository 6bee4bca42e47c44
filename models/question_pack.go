package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionPack struct {
	ID           string                      `json:"id" gorm:"primaryKey;type:uuid"`
	Title        string                      `json:"title" gorm:"not null"`
	Description  string                      `json:"description"`
	TeacherID    string                      `json:"teacherId" gorm:"type:uuid;not null;index"`
	Semester     string                      `json:"semester" gorm:"not null"`
	Subject      string                      `json:"subject" gorm:"not null"`
	ImagePreview string                      `json:"imagePreview"`
	ClassID      *string                     `json:"classId" gorm:"type:uuid"`
	IsPublic     bool                        `json:"isPublic" gorm:"not null;default:false"`
	Questions    datatypes.JSONSlice[string] `json:"questions"`
	CreatedAt    time.Time                   `json:"createdAt"`
}

func (p *QuestionPack) IsOwner(userID string) bool {
	return p.TeacherID == userID
}

// Private packs with no class are only visible to their owner.
func (p *QuestionPack) IsPrivate() bool {
	return !p.IsPublic && p.ClassID == nil
}

func (p *QuestionPack) IsClassScoped() bool {
	return !p.IsPublic && p.ClassID != nil
}

// PackSummary is the projection embedded in exams.
type PackSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Subject     string `json:"subject"`
}

func (p *QuestionPack) Summary() PackSummary {
	return PackSummary{ID: p.ID, Title: p.Title, Description: p.Description, Subject: p.Subject}
}
