package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizone/mail"
	"quizone/models"
	"quizone/storage/memstore"
)

var ctx = context.Background()

type stubGoogle map[string]*GoogleProfile

func (g stubGoogle) Verify(idToken string) (*GoogleProfile, error) {
	if p, ok := g[idToken]; ok {
		return p, nil
	}
	return nil, errors.New("invalid id token")
}

func newTestAuth(t *testing.T) (*AuthService, *mail.ConsoleSender) {
	t.Helper()
	mailer := mail.NewSilentSender()
	google := stubGoogle{
		"new-google":   {Subject: "g1", Email: "gina@example.com", Name: "gina"},
		"local-google": {Subject: "g2", Email: "alice@example.com", Name: "alice"},
	}
	svc := NewAuthService(memstore.New(), NewMemoryResetTokens(), mailer, google, AuthConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
		FrontendURL:   "http://front.test",
	})
	return svc, mailer
}

func registerAlice(t *testing.T, svc *AuthService) *models.User {
	t.Helper()
	user, err := svc.Register(ctx, RegisterRequest{
		Username: "alice",
		Password: "secret1",
		Email:    "Alice@Example.com",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	svc, _ := newTestAuth(t)
	user := registerAlice(t, svc)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	tests := []struct {
		name string
		req  RegisterRequest
		kind ErrorKind
		code int
	}{
		{"missing fields", RegisterRequest{Username: "bob"}, KindValidation, CodeInvalidFields},
		{"bad role", RegisterRequest{Username: "bob", Password: "secret1", Email: "b@x.io", Role: "root"}, KindValidation, CodeInvalidFields},
		{"short password", RegisterRequest{Username: "bob", Password: "123", Email: "b@x.io", Role: models.RoleStudent}, KindValidation, CodeInvalidFields},
		{"duplicate username", RegisterRequest{Username: "alice", Password: "secret1", Email: "other@x.io", Role: models.RoleStudent}, KindConflict, CodeDuplicateUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			requireCode(t, err, tt.kind, tt.code)
		})
	}
}

func TestAddUserRequiresEveryField(t *testing.T) {
	svc, _ := newTestAuth(t)
	req := RegisterRequest{
		Username: "carol",
		Password: "secret1",
		Email:    "carol@example.com",
		Role:     models.RoleTeacher,
	}
	_, err := svc.AddUser(ctx, req)
	requireCode(t, err, KindValidation, CodeInvalidFields)

	req.PhoneNumber = "555-0100"
	req.Gender = "female"
	user, err := svc.AddUser(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", user.PhoneNumber)

	_, err = svc.AddUser(ctx, req)
	requireCode(t, err, KindConflict, CodeDuplicateUser)
}

func TestLoginAndTokens(t *testing.T) {
	svc, _ := newTestAuth(t)
	user := registerAlice(t, svc)

	for _, login := range []LoginRequest{
		{Username: "alice", Password: "secret1"},
		{Email: "alice@example.com", Password: "secret1"},
	} {
		res, err := svc.Login(ctx, login)
		require.NoError(t, err)
		assert.Equal(t, user.ID, res.User.ID)

		ident, err := svc.Resolve(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, ident.ID)
		assert.Equal(t, models.RoleStudent, ident.Role)

		_, err = svc.Resolve(res.RefreshToken)
		assert.Error(t, err, "a refresh token is not an access token")

		refreshed, err := svc.Refresh(ctx, res.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.AccessToken)
	}

	_, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "wrong"})
	requireCode(t, err, KindUnauthorized, CodeInvalidCredentials)
	_, err = svc.Login(ctx, LoginRequest{Username: "nobody", Password: "secret1"})
	requireCode(t, err, KindUnauthorized, CodeInvalidCredentials)

	_, err = svc.DecodeToken("garbage")
	requireCode(t, err, KindValidation, CodeInvalidFields)
}

func TestExpiredAccessToken(t *testing.T) {
	svc, _ := newTestAuth(t)
	registerAlice(t, svc)
	res, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Resolve(res.AccessToken)
	assert.Error(t, err)
}

func TestPasswordReset(t *testing.T) {
	svc, mailer := newTestAuth(t)
	registerAlice(t, svc)

	require.NoError(t, svc.RequestPasswordReset(ctx, "nobody@example.com"))
	assert.Empty(t, mailer.Sent(), "unknown emails are ignored silently")

	require.NoError(t, svc.RequestPasswordReset(ctx, "ALICE@example.com"))
	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice@example.com", sent[0].To)

	start := strings.Index(sent[0].Text, "http://front.test/reset-password?token=")
	require.GreaterOrEqual(t, start, 0)
	link := strings.Fields(sent[0].Text[start:])[0]
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	token := parsed.Query().Get("token")
	require.NotEmpty(t, token)

	require.NoError(t, svc.ResetPassword(ctx, token, "newpass1"))
	err = svc.ResetPassword(ctx, token, "again12")
	requireCode(t, err, KindValidation, CodeInvalidFields)

	_, err = svc.Login(ctx, LoginRequest{Username: "alice", Password: "newpass1"})
	assert.NoError(t, err)
}

func TestLoginWithGoogle(t *testing.T) {
	svc, _ := newTestAuth(t)
	registerAlice(t, svc)

	first, err := svc.LoginWithGoogle(ctx, "new-google")
	require.NoError(t, err)
	assert.Equal(t, models.AccountGoogle, first.User.Type)
	assert.Equal(t, models.RoleStudent, first.User.Role)

	again, err := svc.LoginWithGoogle(ctx, "new-google")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, again.User.ID)

	_, err = svc.LoginWithGoogle(ctx, "local-google")
	requireCode(t, err, KindConflict, CodeDuplicateUser)

	_, err = svc.LoginWithGoogle(ctx, "forged")
	requireCode(t, err, KindUnauthorized, CodeInvalidCredentials)
}

func TestMemoryResetTokensExpire(t *testing.T) {
	tokens := NewMemoryResetTokens()
	require.NoError(t, tokens.Put(ctx, "tok", "u1", -time.Second))
	_, err := tokens.Take(ctx, "tok")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}
