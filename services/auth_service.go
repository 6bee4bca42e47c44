package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"quizone/mail"
	"quizone/models"
	"quizone/storage"
)

const minPasswordLength = 6

type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	FrontendURL   string
}

// Claims is the JWT payload of both access and refresh tokens; they differ by secret.
type Claims struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() *models.Identity {
	return &models.Identity{ID: c.ID, Role: c.Role, Email: c.Email, Username: c.Name}
}

type AuthResult struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user"`
}

type GoogleProfile struct {
	Subject string
	Email   string
	Name    string
}

type GoogleVerifier interface {
	Verify(idToken string) (*GoogleProfile, error)
}

type googleIDTokenVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleIDTokenVerifier{clientID: clientID}
}

func (g *googleIDTokenVerifier) Verify(idToken string) (*GoogleProfile, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{g.clientID}); err != nil {
		return nil, err
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, err
	}
	return &GoogleProfile{Subject: claimSet.Sub, Email: claimSet.Email, Name: claimSet.Name}, nil
}

type AuthService struct {
	store  storage.UserStore
	resets ResetTokenStore
	mailer mail.Sender
	google GoogleVerifier
	cfg    AuthConfig
	now    func() time.Time
}

func NewAuthService(store storage.UserStore, resets ResetTokenStore, mailer mail.Sender, google GoogleVerifier, cfg AuthConfig) *AuthService {
	return &AuthService{
		store:  store,
		resets: resets,
		mailer: mailer,
		google: google,
		cfg:    cfg,
		now:    time.Now,
	}
}

type RegisterRequest struct {
	Username    string `json:"username" form:"username"`
	Password    string `json:"password" form:"password"`
	Email       string `json:"email" form:"email"`
	Role        string `json:"role" form:"role"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber"`
	Gender      string `json:"gender" form:"gender"`
	Image       string `json:"-" form:"-"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" || req.Role == "" {
		return nil, Invalid(CodeInvalidFields, "All fields are required.")
	}
	if !models.ValidRole(req.Role) {
		return nil, Invalid(CodeInvalidFields, "Invalid role.")
	}
	if len(req.Password) < minPasswordLength {
		return nil, Invalid(CodeInvalidFields, fmt.Sprintf("Password must be at least %d characters.", minPasswordLength))
	}

	user := &models.User{
		ID:          uuid.NewString(),
		Username:    username,
		Email:       email,
		Role:        req.Role,
		PhoneNumber: req.PhoneNumber,
		Gender:      req.Gender,
		Image:       req.Image,
		Type:        models.AccountLocal,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, Internal(err, "Error registering user")
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, Conflict(CodeDuplicateUser, "Username or email already exists.")
		}
		return nil, Internal(err, "Error registering user")
	}
	return user, nil
}

// AddUser is Register with every profile field required.
func (s *AuthService) AddUser(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if strings.TrimSpace(req.PhoneNumber) == "" || strings.TrimSpace(req.Gender) == "" {
		return nil, Invalid(CodeInvalidFields, "All fields are required.")
	}
	return s.Register(ctx, req)
}

// Login accepts either a username or an email as the login name.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	login := strings.TrimSpace(req.Username)
	if login == "" {
		login = strings.TrimSpace(req.Email)
	}
	if login == "" || req.Password == "" {
		return nil, Invalid(CodeInvalidFields, "Username and password are required.")
	}

	user, err := s.store.GetUserByLogin(ctx, login)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, Unauthorized("Invalid username or password.")
	}
	if err != nil {
		return nil, Internal(err, "An error occurred while logging in")
	}
	if err := user.CheckPassword(req.Password); err != nil {
		return nil, Unauthorized("Invalid username or password.")
	}
	return s.issue(user)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.parse(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return nil, Unauthorized("Refresh token invalid")
	}
	user, err := s.store.GetUser(ctx, claims.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, Unauthorized("Refresh token invalid")
	}
	if err != nil {
		return nil, Internal(err, "An error occurred while refreshing the token")
	}
	return s.issue(user)
}

// LoginWithGoogle signs in a Google account, creating it on first use. An email that
// belongs to a password account is rejected.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.google == nil {
		return nil, Internal(errors.New("google login not configured"), "Google login is not available")
	}
	profile, err := s.google.Verify(idToken)
	if err != nil {
		return nil, Unauthorized("Invalid Google ID Token")
	}
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		return nil, Unauthorized("Google account has no email")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Type != models.AccountGoogle {
			return nil, Conflict(CodeDuplicateUser, "Email already registered")
		}
		return s.issue(user)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, Internal(err, "Failed to look up Google user")
	}

	user = &models.User{
		ID:       uuid.NewString(),
		Username: googleUsername(profile, email),
		Email:    email,
		Role:     models.RoleStudent,
		Type:     models.AccountGoogle,
	}
	err = s.store.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrDuplicate) {
		// the display name is taken by someone else
		user.Username = user.Username + "-" + user.ID[:8]
		err = s.store.CreateUser(ctx, user)
	}
	if err != nil {
		return nil, Internal(err, "Failed to create Google user")
	}
	return s.issue(user)
}

func googleUsername(p *GoogleProfile, email string) string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return strings.SplitN(email, "@", 2)[0]
}

// Resolve turns an access token into the caller's identity.
func (s *AuthService) Resolve(token string) (*models.Identity, error) {
	claims, err := s.parse(token, s.cfg.AccessSecret)
	if err != nil {
		return nil, Unauthorized("Invalid or expired token")
	}
	return claims.Identity(), nil
}

func (s *AuthService) DecodeToken(token string) (*models.Identity, error) {
	ident, err := s.Resolve(token)
	if err != nil {
		return nil, Invalid(CodeInvalidFields, "Invalid token")
	}
	return ident, nil
}

// RequestPasswordReset mails a single-use reset link. Unknown emails succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Invalid(CodeInvalidFields, "Email is required.")
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		log.Printf("Password reset requested for unknown email %s", email)
		return nil
	}
	if err != nil {
		return Internal(err, "An error occurred while requesting the reset")
	}

	token, err := randomToken(32)
	if err != nil {
		return Internal(err, "An error occurred while requesting the reset")
	}
	if err := s.resets.Put(ctx, token, user.ID, ResetTokenTTL); err != nil {
		return Internal(err, "An error occurred while requesting the reset")
	}

	link := strings.TrimRight(s.cfg.FrontendURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
	msg := mail.Message{
		To:      user.Email,
		Subject: "Password reset",
		Text:    fmt.Sprintf("Hello %s,\n\nUse this link within 5 minutes to reset your password:\n%s\n", user.Username, link),
		HTML:    fmt.Sprintf(`<p>Hello %s,</p><p>Use <a href="%s">this link</a> within 5 minutes to reset your password.</p>`, user.Username, link),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return Internal(err, "An error occurred while sending the reset email")
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return Invalid(CodeInvalidFields, "Token and password are required.")
	}
	if len(password) < minPasswordLength {
		return Invalid(CodeInvalidFields, fmt.Sprintf("Password must be at least %d characters.", minPasswordLength))
	}
	userID, err := s.resets.Take(ctx, token)
	if errors.Is(err, ErrResetTokenInvalid) {
		return Invalid(CodeInvalidFields, "Reset token is invalid or expired.")
	}
	if err != nil {
		return Internal(err, "An error occurred while resetting the password")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return lookupErr(err, CodeNotFound, "User not found.")
	}
	if err := user.SetPassword(password); err != nil {
		return Internal(err, "An error occurred while resetting the password")
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return Internal(err, "An error occurred while resetting the password")
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	access, err := s.sign(user, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return nil, Internal(err, "Failed to issue token")
	}
	refresh, err := s.sign(user, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return nil, Internal(err, "Failed to issue token")
	}
	return &AuthResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func (s *AuthService) sign(user *models.User, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		ID:    user.ID,
		Role:  user.Role,
		Email: user.Email,
		Name:  user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *AuthService) parse(token, secret string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
