package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"quizone/models"
)

func (s *Store) FindConversation(ctx context.Context, pairKey string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.conn(ctx).First(&conv, "pair_key = ?", pairKey).Error; err != nil {
		return nil, translate(err, "find conversation")
	}
	return &conv, nil
}

// AppendMessage retries once when a concurrent sender created the conversation between
// our lookup and insert.
func (s *Store) AppendMessage(ctx context.Context, pairKey string, participants []string, msg *models.Message) (*models.Conversation, error) {
	conv, err := retryOnDuplicate(func() (*models.Conversation, error) {
		return s.appendMessage(ctx, pairKey, participants, msg)
	})
	if err != nil {
		return nil, translate(err, "append message")
	}
	return conv, nil
}

func (s *Store) appendMessage(ctx context.Context, pairKey string, participants []string, msg *models.Message) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).First(&conv, "pair_key = ?", pairKey).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			conv = models.Conversation{
				ID:           msg.ConversationID,
				PairKey:      pairKey,
				Participants: append([]string{}, participants...),
				Messages:     []string{},
			}
			if err := tx.Create(&conv).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		msg.ConversationID = conv.ID
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		conv.Messages = append(conv.Messages, msg.ID)
		return tx.Model(&conv).Update("messages", conv.Messages).Error
	})
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *Store) GetMessages(ctx context.Context, ids []string) ([]models.Message, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return []models.Message{}, nil
	}
	var msgs []models.Message
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&msgs).Error; err != nil {
		return nil, translate(err, "get messages")
	}
	return reorder(msgs, ids, func(m models.Message) string { return m.ID }), nil
}
