package models

import (
	"time"

	"gorm.io/datatypes"
)

type Comment struct {
	ID          string                     `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      string                     `json:"userId" gorm:"type:uuid;not null"`
	Content     string                     `json:"content" gorm:"not null"`
	Image       string                     `json:"image"`
	FlashcardID string                     `json:"flashcardId" gorm:"type:uuid;not null;index"`
	Replies     datatypes.JSONSlice[Reply] `json:"replies"`
	CreatedAt   time.Time                  `json:"createdAt"`
}

// Reply is stored inside its comment; each reply keeps its own author.
type Reply struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Comment) ReplyIndex(replyID string) int {
	for i, r := range c.Replies {
		if r.ID == replyID {
			return i
		}
	}
	return -1
}
