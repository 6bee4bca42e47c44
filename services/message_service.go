package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"quizone/models"
	"quizone/storage"
)

// Notifier pushes an event to a user's live connection, if there is one.
type Notifier interface {
	SendTo(userID, event string, payload any) bool
}

type MessageService struct {
	store    storage.Store
	notifier Notifier
}

func NewMessageService(store storage.Store, notifier Notifier) *MessageService {
	return &MessageService{store: store, notifier: notifier}
}

type SendMessageRequest struct {
	Message     string `json:"message"`
	MessageType string `json:"messageType"`
}

// SendMessage persists the message in the sender/receiver conversation, then pushes it
// to the receiver. The push is advisory; GetMessages is the source of truth.
func (s *MessageService) SendMessage(ctx context.Context, senderID, receiverID string, req SendMessageRequest) (*models.Message, error) {
	content := strings.TrimSpace(req.Message)
	if content == "" {
		return nil, Invalid(CodeInvalidFields, "Message content is required.")
	}
	messageType := req.MessageType
	if messageType == "" {
		messageType = models.MessageText
	}
	if !models.ValidMessageType(messageType) {
		return nil, Invalid(CodeInvalidFields, "Invalid message type.")
	}
	if receiverID == senderID {
		return nil, Invalid(CodeInvalidFields, "You cannot send a message to yourself.")
	}
	if _, err := s.store.GetUser(ctx, receiverID); err != nil {
		return nil, lookupErr(err, CodeNotFound, "Receiver not found.")
	}

	msg := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: uuid.NewString(),
		SenderID:       senderID,
		Content:        content,
		MessageType:    messageType,
	}
	participants := []string{senderID, receiverID}
	if _, err := s.store.AppendMessage(ctx, models.PairKey(senderID, receiverID), participants, msg); err != nil {
		return nil, Internal(err, "Internal server error")
	}

	if s.notifier != nil {
		s.notifier.SendTo(receiverID, EventNewMessage, msg)
	}
	return msg, nil
}

// GetMessages returns the conversation between the two users in send order.
func (s *MessageService) GetMessages(ctx context.Context, callerID, otherID string) ([]models.Message, error) {
	if otherID == "" {
		return nil, Invalid(CodeInvalidFields, "User to chat ID is required.")
	}
	conv, err := s.store.FindConversation(ctx, models.PairKey(callerID, otherID))
	if errors.Is(err, storage.ErrNotFound) {
		return []models.Message{}, nil
	}
	if err != nil {
		return nil, Internal(err, "Internal server error")
	}
	msgs, err := s.store.GetMessages(ctx, conv.Messages)
	if err != nil {
		return nil, Internal(err, "Internal server error")
	}
	return msgs, nil
}
