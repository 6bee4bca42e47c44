package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizone/models"
)

func TestSendMessageSingleConversationPerPair(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice", models.RoleStudent)
	bob := f.user("bob", models.RoleTeacher)

	registry := NewRegistry(tokenResolver{"bob-token": bob})
	bobConn := newFakeConn()
	_, err := registry.Connect(bobConn, "bob-token")
	require.NoError(t, err)

	svc := NewMessageService(f.store, registry)

	first, err := svc.SendMessage(f.ctx, alice.ID, bob.ID, SendMessageRequest{Message: "hi bob"})
	require.NoError(t, err)
	assert.Equal(t, models.MessageText, first.MessageType)

	pushed, ok := bobConn.last(EventNewMessage)
	require.True(t, ok, "receiver should get the message pushed")
	assert.Equal(t, first, pushed)

	second, err := svc.SendMessage(f.ctx, bob.ID, alice.ID, SendMessageRequest{Message: "hi alice", MessageType: models.MessageImage})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	fromAlice, err := svc.GetMessages(f.ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	fromBob, err := svc.GetMessages(f.ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	require.Len(t, fromAlice, 2)
	assert.Equal(t, fromAlice, fromBob)
	assert.Equal(t, "hi bob", fromAlice[0].Content)
	assert.Equal(t, "hi alice", fromAlice[1].Content)
}

func TestSendMessageWithoutLiveReceiver(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice", models.RoleStudent)
	bob := f.user("bob", models.RoleStudent)
	svc := NewMessageService(f.store, NewRegistry(tokenResolver{}))

	_, err := svc.SendMessage(f.ctx, alice.ID, bob.ID, SendMessageRequest{Message: "offline"})
	require.NoError(t, err)

	msgs, err := svc.GetMessages(f.ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, alice.ID, msgs[0].SenderID)
}

func TestSendMessageValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice", models.RoleStudent)
	svc := NewMessageService(f.store, nil)

	tests := []struct {
		name     string
		receiver string
		req      SendMessageRequest
		kind     ErrorKind
		code     int
	}{
		{"empty content", "someone", SendMessageRequest{Message: "  "}, KindValidation, CodeInvalidFields},
		{"bad type", "someone", SendMessageRequest{Message: "x", MessageType: "gif"}, KindValidation, CodeInvalidFields},
		{"to self", alice.ID, SendMessageRequest{Message: "x"}, KindValidation, CodeInvalidFields},
		{"unknown receiver", "nobody", SendMessageRequest{Message: "x"}, KindNotFound, CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendMessage(f.ctx, alice.ID, tt.receiver, tt.req)
			requireCode(t, err, tt.kind, tt.code)
		})
	}
}

func TestGetMessagesWithoutConversation(t *testing.T) {
	f := newFixture(t)
	msgs, err := NewMessageService(f.store, nil).GetMessages(f.ctx, "a", "b")
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.NotNil(t, msgs)
}
