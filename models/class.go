package models

import (
	"time"

	"gorm.io/datatypes"
)

type Class struct {
	ID              string                      `json:"id" gorm:"primaryKey;type:uuid"`
	Name            string                      `json:"name" gorm:"not null"`
	TeacherID       string                      `json:"teacherId" gorm:"type:uuid;not null;index"`
	Students        datatypes.JSONSlice[string] `json:"students"`
	QuestionPacks   datatypes.JSONSlice[string] `json:"questionPacks"`
	Exams           datatypes.JSONSlice[string] `json:"exams"`
	InvitationToken string                      `json:"-" gorm:"uniqueIndex;not null"`
	InvitationLink  string                      `json:"invitationLink"`
	CreatedAt       time.Time                   `json:"createdAt"`
}

func (c *Class) IsTeacher(userID string) bool {
	return c.TeacherID == userID
}

func (c *Class) HasStudent(userID string) bool {
	return contains(c.Students, userID)
}

func (c *Class) IsMember(userID string) bool {
	return c.IsTeacher(userID) || c.HasStudent(userID)
}

func (c *Class) HasQuestionPack(packID string) bool {
	return contains(c.QuestionPacks, packID)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns ids with every occurrence of id removed.
func Without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
