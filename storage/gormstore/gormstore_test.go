package gormstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"quizone/models"
	"quizone/storage"
)

func TestOpenTranslatesDriverErrors(t *testing.T) {
	assert.True(t, gormConfig().TranslateError, "unique violations must surface as gorm.ErrDuplicatedKey")
}

func TestTranslate(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"not found", gorm.ErrRecordNotFound, storage.ErrNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, storage.ErrDuplicate},
		{"wrapped duplicate", fmt.Errorf("tx: %w", gorm.ErrDuplicatedKey), storage.ErrDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translate(tt.err, "op"))
		})
	}

	t.Run("other errors keep their cause", func(t *testing.T) {
		err := translate(boom, "create result")
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "create result")
		assert.NotErrorIs(t, err, storage.ErrDuplicate)
	})
}

func TestReorder(t *testing.T) {
	items := []models.Flashcard{{ID: "c"}, {ID: "a"}, {ID: "b"}}
	got := reorder(items, []string{"a", "missing", "b", "c"}, func(f models.Flashcard) string { return f.ID })

	ids := make([]string, 0, len(got))
	for _, f := range got {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Empty(t, reorder(items, nil, func(f models.Flashcard) string { return f.ID }))
}

func TestRetryOnDuplicate(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{"first attempt wins", []error{nil}, 1, nil},
		{"lost race then found", []error{gorm.ErrDuplicatedKey, nil}, 2, nil},
		{"lost twice", []error{gorm.ErrDuplicatedKey, gorm.ErrDuplicatedKey}, 2, gorm.ErrDuplicatedKey},
		{"other error is not retried", []error{gorm.ErrInvalidData}, 1, gorm.ErrInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			v, err := retryOnDuplicate(func() (int, error) {
				err := tt.errs[calls]
				calls++
				return calls, err
			})
			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantCalls, v)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidIDs(t *testing.T) {
	id := uuid.NewString()
	assert.True(t, isUUID(id))
	assert.False(t, isUUID("abc"))
	assert.False(t, isUUID(""))
	assert.Equal(t, []string{id}, validIDs([]string{"abc", id, ""}))
}

// Malformed ids are answered before any query reaches postgres, so a zero Store is enough.
func TestMalformedIDs(t *testing.T) {
	ctx := context.Background()
	s := &Store{}

	notFound := map[string]func() error{
		"GetUser":               func() error { _, err := s.GetUser(ctx, "abc"); return err },
		"DeleteUser":            func() error { return s.DeleteUser(ctx, "abc") },
		"GetClass":              func() error { _, err := s.GetClass(ctx, "abc"); return err },
		"UpdateClass":           func() error { _, err := s.UpdateClass(ctx, "abc", nil); return err },
		"DeleteClass":           func() error { return s.DeleteClass(ctx, "abc") },
		"GetQuestionPack":       func() error { _, err := s.GetQuestionPack(ctx, "abc"); return err },
		"DeleteQuestionPack":    func() error { return s.DeleteQuestionPack(ctx, "abc") },
		"AddFlashcard":          func() error { return s.AddFlashcard(ctx, &models.Flashcard{QuestionPackID: "abc"}) },
		"GetFlashcard":          func() error { _, err := s.GetFlashcard(ctx, "abc"); return err },
		"AddComment":            func() error { return s.AddComment(ctx, &models.Comment{FlashcardID: "abc"}) },
		"GetComment":            func() error { _, err := s.GetComment(ctx, "abc"); return err },
		"UpdateComment":         func() error { _, err := s.UpdateComment(ctx, "abc", nil); return err },
		"CreateExam":            func() error { return s.CreateExam(ctx, &models.Exam{ClassID: "abc"}) },
		"GetExam":               func() error { _, err := s.GetExam(ctx, "abc"); return err },
		"GetExamByQuestionPack": func() error { _, err := s.GetExamByQuestionPack(ctx, "abc"); return err },
	}
	for name, call := range notFound {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), storage.ErrNotFound)
		})
	}

	t.Run("lists are empty", func(t *testing.T) {
		classes, err := s.ListClassesForUser(ctx, "abc")
		require.NoError(t, err)
		assert.Empty(t, classes)

		packs, err := s.ListQuestionPacksByTeacher(ctx, "abc")
		require.NoError(t, err)
		assert.Empty(t, packs)

		comments, err := s.ListComments(ctx, "abc", 0, 4)
		require.NoError(t, err)
		assert.Empty(t, comments)

		n, err := s.CountComments(ctx, "abc")
		require.NoError(t, err)
		assert.Zero(t, n)

		results, err := s.ListResultsByExam(ctx, "abc")
		require.NoError(t, err)
		assert.Empty(t, results)

		users, err := s.GetUsers(ctx, []string{"abc"})
		require.NoError(t, err)
		assert.Empty(t, users)

		cards, err := s.GetFlashcards(ctx, []string{"abc"})
		require.NoError(t, err)
		assert.Empty(t, cards)

		msgs, err := s.GetMessages(ctx, []string{"abc"})
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("negative comment offset", func(t *testing.T) {
		comments, err := s.ListComments(ctx, uuid.NewString(), -8, 4)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})
}
