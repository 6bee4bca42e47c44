package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizone/models"
)

func TestUserSearch(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store)
	f.user("alice", models.RoleStudent)
	f.user("bob", models.RoleTeacher)

	users, err := svc.Search(f.ctx, "ALI")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)

	_, err = svc.Search(f.ctx, "  ")
	requireCode(t, err, KindValidation, CodeInvalidFields)
	_, err = svc.Search(f.ctx, "zed")
	requireCode(t, err, KindNotFound, CodeNotFound)

	all, err := svc.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store)
	alice := f.user("alice", models.RoleStudent)
	bob := f.user("bob", models.RoleStudent)
	admin := f.user("root", models.RoleAdmin)

	tests := []struct {
		name   string
		caller *models.Identity
		target string
		req    UpdateProfileRequest
		kind   ErrorKind
		code   int
	}{
		{"other user", bob, alice.ID, UpdateProfileRequest{Username: "x", Email: "x@x.io"}, KindForbidden, CodeForbidden},
		{"missing fields", alice, alice.ID, UpdateProfileRequest{Username: "alice"}, KindValidation, CodeInvalidFields},
		{"own role", alice, alice.ID, UpdateProfileRequest{Username: "alice", Email: "alice@example.com", Role: models.RoleTeacher}, KindForbidden, CodeForbidden},
		{"taken username", alice, alice.ID, UpdateProfileRequest{Username: "bob", Email: "alice@example.com"}, KindConflict, CodeDuplicateUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateProfile(f.ctx, tt.caller, tt.target, tt.req)
			requireCode(t, err, tt.kind, tt.code)
		})
	}

	t.Run("own profile", func(t *testing.T) {
		user, err := svc.UpdateProfile(f.ctx, alice, alice.ID, UpdateProfileRequest{
			Username:    "alice2",
			Email:       "Alice2@Example.com",
			Role:        models.RoleStudent,
			PhoneNumber: "555",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice2", user.Username)
		assert.Equal(t, "alice2@example.com", user.Email)
		assert.Equal(t, "555", user.PhoneNumber)
	})

	t.Run("admin changes own role", func(t *testing.T) {
		user, err := svc.UpdateProfile(f.ctx, admin, admin.ID, UpdateProfileRequest{
			Username: "root",
			Email:    "root@example.com",
			Role:     models.RoleTeacher,
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleTeacher, user.Role)
	})
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store)
	alice := f.user("alice", models.RoleStudent)
	bob := f.user("bob", models.RoleStudent)
	admin := f.user("root", models.RoleAdmin)

	_, err := svc.Delete(f.ctx, bob, alice.ID)
	requireCode(t, err, KindForbidden, CodeForbidden)

	deleted, err := svc.Delete(f.ctx, admin, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, deleted.ID)

	_, err = svc.Get(f.ctx, alice.ID)
	requireCode(t, err, KindNotFound, CodeNotFound)

	_, err = svc.Delete(f.ctx, bob, bob.ID)
	assert.NoError(t, err)
}
