package models

import (
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	MessageText  = "text"
	MessageImage = "image"
	MessageVideo = "video"
)

func ValidMessageType(t string) bool {
	return t == MessageText || t == MessageImage || t == MessageVideo
}

// Conversation is keyed by the unordered pair of its participants.
type Conversation struct {
	ID           string                      `json:"id" gorm:"primaryKey;type:uuid"`
	PairKey      string                      `json:"-" gorm:"uniqueIndex;not null"`
	Participants datatypes.JSONSlice[string] `json:"participants"`
	Messages     datatypes.JSONSlice[string] `json:"messages"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

type Message struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid"`
	ConversationID string    `json:"conversationId" gorm:"type:uuid;not null;index"`
	SenderID       string    `json:"sender" gorm:"type:uuid;not null"`
	Content        string    `json:"content" gorm:"not null"`
	MessageType    string    `json:"messageType" gorm:"not null;default:'text'"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PairKey returns the same key for (a, b) and (b, a).
func PairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}
