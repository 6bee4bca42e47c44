package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"quizone/models"
	"quizone/storage/memstore"
)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memstore.Store
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, ctx: context.Background(), store: memstore.New()}
}

func (f *fixture) user(name, role string) *models.Identity {
	u := &models.User{
		ID:       uuid.NewString(),
		Username: name,
		Email:    name + "@example.com",
		Role:     role,
		Type:     models.AccountLocal,
	}
	require.NoError(f.t, f.store.CreateUser(f.ctx, u))
	return &models.Identity{ID: u.ID, Role: u.Role, Email: u.Email, Username: u.Username}
}

func (f *fixture) class(teacher *models.Identity, students ...*models.Identity) *models.Class {
	c := &models.Class{
		ID:              uuid.NewString(),
		Name:            "Class " + teacher.Username,
		TeacherID:       teacher.ID,
		InvitationToken: uuid.NewString(),
	}
	for _, s := range students {
		c.Students = append(c.Students, s.ID)
	}
	require.NoError(f.t, f.store.CreateClass(f.ctx, c))
	return c
}

func (f *fixture) pack(owner *models.Identity, public bool, classID *string) *models.QuestionPack {
	p := &models.QuestionPack{
		ID:        uuid.NewString(),
		Title:     "Pack",
		TeacherID: owner.ID,
		Semester:  "1",
		Subject:   "Math",
		IsPublic:  public,
		ClassID:   classID,
	}
	require.NoError(f.t, f.store.CreateQuestionPack(f.ctx, p))
	return p
}

func (f *fixture) card(packID string, answers []string, correct ...int64) *models.Flashcard {
	c := &models.Flashcard{
		ID:             uuid.NewString(),
		QuestionText:   "question",
		Answers:        answers,
		CorrectAnswers: correct,
		QuestionPackID: packID,
	}
	require.NoError(f.t, c.Validate())
	require.NoError(f.t, f.store.AddFlashcard(f.ctx, c))
	return c
}

// requireCode asserts err is a service Error with the given kind and code.
func requireCode(t *testing.T, err error, kind ErrorKind, code int) {
	t.Helper()
	require.Error(t, err)
	var se *Error
	require.True(t, errors.As(err, &se), "expected *Error, got %T: %v", err, err)
	require.Equal(t, kind, se.Kind, se.Message)
	require.Equal(t, code, se.Code, se.Message)
}

// fakeConn records emitted events.
type fakeConn struct {
	id string

	mu     sync.Mutex
	events []emitted
	closed bool
}

type emitted struct {
	event   string
	payload any
}

func newFakeConn() *fakeConn {
	return &fakeConn{id: uuid.NewString()}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Emit(event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, emitted{event: event, payload: payload})
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) last(event string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].event == event {
			return c.events[i].payload, true
		}
	}
	return nil, false
}

// tokenResolver resolves tokens straight from a map.
type tokenResolver map[string]*models.Identity

func (r tokenResolver) Resolve(token string) (*models.Identity, error) {
	if ident, ok := r[token]; ok {
		return ident, nil
	}
	return nil, Unauthorized("Invalid or expired token")
}
