// Package gormstore implements storage.Store on PostgreSQL through gorm.
package gormstore

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quizone/models"
	"quizone/storage"
)

type Store struct {
	db *gorm.DB
}

var _ storage.Store = (*Store)(nil)

// New expects db to be opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey. Open does that.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to postgres with the settings the store relies on.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

func gormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

// AutoMigrate creates or updates every table the store uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.QuestionPack{},
		&models.Flashcard{},
		&models.Comment{},
		&models.Exam{},
		&models.Result{},
		&models.Conversation{},
		&models.Message{},
	)
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return storage.ErrDuplicate
	default:
		return pkgerrors.Wrap(err, op)
	}
}

// checkAffected reports ErrNotFound when an update or delete matched nothing.
func checkAffected(tx *gorm.DB, op string) error {
	if tx.Error != nil {
		return translate(tx.Error, op)
	}
	if tx.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// isUUID reports whether id can be compared with a uuid column. Postgres rejects a
// malformed literal instead of matching nothing.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validIDs drops the ids no uuid column can hold.
func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			out = append(out, id)
		}
	}
	return out
}

// retryOnDuplicate runs fn a second time when the first attempt lost a unique-key race.
func retryOnDuplicate[T any](fn func() (T, error)) (T, error) {
	v, err := fn()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		v, err = fn()
	}
	return v, err
}

func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(query) + "%"
}

// jsonContains builds a jsonb containment argument for a single id.
func jsonContains(id string) datatypes.JSONSlice[string] {
	return datatypes.JSONSlice[string]{id}
}

// reorder returns the items whose key appears in ids, in ids order.
func reorder[T any](items []T, ids []string, key func(T) string) []T {
	byID := make(map[string]T, len(items))
	for _, it := range items {
		byID[key(it)] = it
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out
}

func (s *Store) count(ctx context.Context, model any, op string) (int64, error) {
	var n int64
	if err := s.conn(ctx).Model(model).Count(&n).Error; err != nil {
		return 0, translate(err, op)
	}
	return n, nil
}

func lockForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
