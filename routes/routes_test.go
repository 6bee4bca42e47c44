package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizone/handlers"
	"quizone/mail"
	"quizone/middleware"
	"quizone/models"
	"quizone/services"
	"quizone/storage/memstore"
)

type nopImages struct{}

func (nopImages) Save(file *multipart.FileHeader) (string, error) {
	return "/uploads/" + file.Filename, nil
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *memstore.Store
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)
	store := memstore.New()
	images := nopImages{}

	auth := services.NewAuthService(store, services.NewMemoryResetTokens(), mail.NewSilentSender(), nil, services.AuthConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessTTL:     time.Hour,
		RefreshTTL:    time.Hour,
		FrontendURL:   "http://front.test",
	})
	registry := services.NewRegistry(auth)
	h := Handlers{
		Auth:         handlers.NewAuthHandler(auth, images),
		User:         handlers.NewUserHandler(services.NewUserService(store), images),
		QuestionPack: handlers.NewQuestionPackHandler(services.NewQuestionPackService(store), images),
		Flashcard:    handlers.NewFlashcardHandler(services.NewFlashcardService(store), images),
		Comment:      handlers.NewCommentHandler(services.NewCommentService(store), images),
		Class:        handlers.NewClassHandler(services.NewClassService(store, "http://front.test")),
		Exam:         handlers.NewExamHandler(services.NewExamService(store), services.NewResultService(store)),
		Message:      handlers.NewMessageHandler(services.NewMessageService(store, registry)),
		Admin:        handlers.NewAdminHandler(services.NewAdminService(store, registry)),
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	SetupRoutes(router, h, services.NewHub(registry), auth, t.TempDir())
	return &testServer{t: t, router: router, store: store}
}

func (s *testServer) do(method, path, token string, body any) (int, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

// signup registers and logs in a user, returning its id and access token.
func (s *testServer) signup(name, role string) (string, string) {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/register", "", gin.H{
		"username": name,
		"password": "secret1",
		"email":    name + "@example.com",
		"role":     role,
	})
	require.Equal(s.t, http.StatusCreated, code, body)
	id := body["user"].(map[string]any)["id"].(string)

	code, body = s.do(http.MethodPost, "/api/auth", "", gin.H{"username": name, "password": "secret1"})
	require.Equal(s.t, http.StatusOK, code, body)
	return id, body["accessToken"].(string)
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(http.MethodGet, "/api/id", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.EqualValues(t, services.CodeInvalidCredentials, body["errorCode"])

	code, _ = s.do(http.MethodGet, "/api/id", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	id, token := s.signup("alice", models.RoleStudent)

	code, body = s.do(http.MethodGet, "/api/id", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, id, body["data"].(map[string]any)["id"])

	code, body = s.do(http.MethodPost, "/api/register", "", gin.H{
		"username": "alice",
		"password": "secret1",
		"email":    "other@example.com",
		"role":     models.RoleStudent,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.EqualValues(t, services.CodeDuplicateUser, body["errorCode"])

	code, body = s.do(http.MethodPost, "/api/auth", "", gin.H{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.EqualValues(t, services.CodeInvalidCredentials, body["errorCode"])

	code, body = s.do(http.MethodPost, "/api/user", "", gin.H{
		"username": "bob",
		"password": "secret1",
		"email":    "bob@example.com",
		"role":     models.RoleTeacher,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.EqualValues(t, services.CodeInvalidFields, body["errorCode"])

	code, body = s.do(http.MethodPost, "/api/user", "", gin.H{
		"username":    "bob",
		"password":    "secret1",
		"email":       "bob@example.com",
		"role":        models.RoleTeacher,
		"phoneNumber": "555-0100",
		"gender":      "male",
	})
	assert.Equal(t, http.StatusCreated, code, body)

	code, _ = s.do(http.MethodGet, "/api/user/"+id, "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/api/admin/dashboard", token, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestExamRoutes(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	teacherID, teacherToken := s.signup("tess", models.RoleTeacher)
	studentID, studentToken := s.signup("sam", models.RoleStudent)
	_, outsiderToken := s.signup("olga", models.RoleStudent)

	code, body := s.do(http.MethodPost, "/api/class", teacherToken, gin.H{"name": "Algebra", "students": []string{studentID}})
	require.Equal(t, http.StatusCreated, code, body)
	classID := body["data"].(map[string]any)["id"].(string)

	pack := &models.QuestionPack{ID: uuid.NewString(), Title: "Sums", TeacherID: teacherID, Semester: "1", Subject: "Math", ClassID: &classID}
	require.NoError(t, s.store.CreateQuestionPack(ctx, pack))
	card := &models.Flashcard{ID: uuid.NewString(), QuestionText: "1+1", Answers: []string{"1", "2"}, CorrectAnswers: []int64{1}, QuestionPackID: pack.ID}
	require.NoError(t, s.store.AddFlashcard(ctx, card))

	code, body = s.do(http.MethodGet, "/api/exam/"+pack.ID, studentToken, nil)
	assert.Equal(t, http.StatusNonAuthoritativeInfo, code)
	assert.EqualValues(t, services.CodeNotFound, body["errorCode"])

	code, body = s.do(http.MethodPost, "/api/quiz", studentToken, gin.H{"classId": classID, "questionPackId": pack.ID, "title": "Quiz"})
	assert.Equal(t, http.StatusForbidden, code, body)

	code, body = s.do(http.MethodPost, "/api/quiz", teacherToken, gin.H{"classId": classID, "questionPackId": pack.ID, "title": "Quiz"})
	require.Equal(t, http.StatusCreated, code, body)
	examID := body["exam"].(map[string]any)["id"].(string)

	code, _ = s.do(http.MethodGet, "/api/exam/"+pack.ID, studentToken, nil)
	assert.Equal(t, http.StatusOK, code)

	submit := gin.H{"examId": examID, "answers": map[string][]string{card.ID: {"2"}}}
	code, body = s.do(http.MethodPost, "/api/finish", outsiderToken, submit)
	assert.Equal(t, http.StatusForbidden, code, body)

	code, body = s.do(http.MethodPost, "/api/finish", studentToken, submit)
	require.Equal(t, http.StatusCreated, code, body)
	assert.EqualValues(t, 100, body["result"].(map[string]any)["score"])

	code, body = s.do(http.MethodPost, "/api/finish", studentToken, submit)
	assert.Equal(t, http.StatusConflict, code)
	assert.EqualValues(t, services.CodeAlreadySubmitted, body["errorCode"])

	code, body = s.do(http.MethodGet, "/api/results/"+examID, teacherToken, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Len(t, body["results"], 1)

	code, _ = s.do(http.MethodGet, "/api/results/"+examID, studentToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}
