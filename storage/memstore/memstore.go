// Package memstore is an in-memory storage.Store. It backs the test suites and the
// STORAGE_DRIVER=memory mode; all data is lost when the process exits.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"quizone/models"
	"quizone/storage"
)

type Store struct {
	mu sync.RWMutex

	users         map[string]models.User
	classes       map[string]models.Class
	packs         map[string]models.QuestionPack
	flashcards    map[string]models.Flashcard
	comments      map[string]models.Comment
	exams         map[string]models.Exam
	results       map[string]models.Result
	conversations map[string]models.Conversation
	messages      map[string]models.Message

	// insertion order per collection
	order map[string][]string

	now func() time.Time
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:         map[string]models.User{},
		classes:       map[string]models.Class{},
		packs:         map[string]models.QuestionPack{},
		flashcards:    map[string]models.Flashcard{},
		comments:      map[string]models.Comment{},
		exams:         map[string]models.Exam{},
		results:       map[string]models.Result{},
		conversations: map[string]models.Conversation{},
		messages:      map[string]models.Message{},
		order:         map[string][]string{},
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) track(collection, id string) {
	s.order[collection] = append(s.order[collection], id)
}

func (s *Store) untrack(collection, id string) {
	s.order[collection] = models.Without(s.order[collection], id)
}

func (s *Store) stamp(t *time.Time) {
	if t.IsZero() {
		*t = s.now()
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

func containsFold(values []string, query string) bool {
	q := strings.ToLower(query)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// Users

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return storage.ErrDuplicate
		}
	}
	s.stamp(&user.CreatedAt)
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	s.track("users", user.ID)
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUsers(_ context.Context, ids []string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *Store) findUser(match func(models.User) bool) (*models.User, error) {
	for _, id := range s.order["users"] {
		if u := s.users[id]; match(u) {
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUser(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *Store) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUser(func(u models.User) bool {
		return strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login)
	})
}

func (s *Store) SaveUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return storage.ErrNotFound
	}
	for id, u := range s.users {
		if id == user.ID {
			continue
		}
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return storage.ErrDuplicate
		}
	}
	user.UpdatedAt = s.now()
	s.users[user.ID] = *user
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	s.untrack("users", id)
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, id := range s.order["users"] {
		users = append(users, s.users[id])
	}
	return users, nil
}

func (s *Store) SearchUsers(_ context.Context, query string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []models.User
	for _, id := range s.order["users"] {
		u := s.users[id]
		if containsFold([]string{u.Username, u.Email, u.PhoneNumber}, query) {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *Store) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// Classes

func cloneClass(c models.Class) models.Class {
	c.Students = cloneStrings(c.Students)
	c.QuestionPacks = cloneStrings(c.QuestionPacks)
	c.Exams = cloneStrings(c.Exams)
	return c
}

func (s *Store) CreateClass(_ context.Context, class *models.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.classes {
		if c.InvitationToken == class.InvitationToken {
			return storage.ErrDuplicate
		}
	}
	s.stamp(&class.CreatedAt)
	s.classes[class.ID] = cloneClass(*class)
	s.track("classes", class.ID)
	return nil
}

func (s *Store) GetClass(_ context.Context, id string) (*models.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.classes[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c = cloneClass(c)
	return &c, nil
}

func (s *Store) GetClassByInvitation(_ context.Context, token string) (*models.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.classes {
		if c.InvitationToken == token {
			c = cloneClass(c)
			return &c, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) UpdateClass(_ context.Context, id string, fn func(*models.Class) error) (*models.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.classes[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c = cloneClass(c)
	if err := fn(&c); err != nil {
		return nil, err
	}
	s.classes[id] = cloneClass(c)
	return &c, nil
}

func (s *Store) DeleteClass(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.classes[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.classes, id)
	s.untrack("classes", id)
	return nil
}

func (s *Store) ListClassesForUser(_ context.Context, userID string) ([]models.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var classes []models.Class
	for _, id := range s.order["classes"] {
		c := s.classes[id]
		if c.IsMember(userID) {
			classes = append(classes, cloneClass(c))
		}
	}
	return classes, nil
}

// Question packs

func clonePack(p models.QuestionPack) models.QuestionPack {
	p.Questions = cloneStrings(p.Questions)
	if p.ClassID != nil {
		id := *p.ClassID
		p.ClassID = &id
	}
	return p
}

func (s *Store) CreateQuestionPack(_ context.Context, pack *models.QuestionPack) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stamp(&pack.CreatedAt)
	s.packs[pack.ID] = clonePack(*pack)
	s.track("packs", pack.ID)
	return nil
}

func (s *Store) GetQuestionPack(_ context.Context, id string) (*models.QuestionPack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.packs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p = clonePack(p)
	return &p, nil
}

func (s *Store) SaveQuestionPack(_ context.Context, pack *models.QuestionPack) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.packs[pack.ID]; !ok {
		return storage.ErrNotFound
	}
	s.packs[pack.ID] = clonePack(*pack)
	return nil
}

func (s *Store) DeleteQuestionPack(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.packs[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.packs, id)
	s.untrack("packs", id)
	return nil
}

func (s *Store) filterPacks(match func(models.QuestionPack) bool) []models.QuestionPack {
	var packs []models.QuestionPack
	for _, id := range s.order["packs"] {
		if p := s.packs[id]; match(p) {
			packs = append(packs, clonePack(p))
		}
	}
	return packs
}

func (s *Store) ListPublicQuestionPacks(_ context.Context) ([]models.QuestionPack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterPacks(func(p models.QuestionPack) bool { return p.IsPublic }), nil
}

func (s *Store) ListQuestionPacks(_ context.Context) ([]models.QuestionPack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterPacks(func(models.QuestionPack) bool { return true }), nil
}

func (s *Store) ListQuestionPacksByTeacher(_ context.Context, teacherID string) ([]models.QuestionPack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterPacks(func(p models.QuestionPack) bool { return p.TeacherID == teacherID }), nil
}

func (s *Store) SearchQuestionPacks(_ context.Context, query string) ([]models.QuestionPack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterPacks(func(p models.QuestionPack) bool {
		return containsFold([]string{p.Title, p.Semester, p.Subject}, query)
	}), nil
}

func (s *Store) CountQuestionPacks(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.packs)), nil
}

// Flashcards

func cloneFlashcard(f models.Flashcard) models.Flashcard {
	f.Answers = append(f.Answers[:0:0], f.Answers...)
	f.CorrectAnswers = append(f.CorrectAnswers[:0:0], f.CorrectAnswers...)
	f.Comments = cloneStrings(f.Comments)
	return f
}

func (s *Store) AddFlashcard(_ context.Context, card *models.Flashcard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pack, ok := s.packs[card.QuestionPackID]
	if !ok {
		return storage.ErrNotFound
	}
	s.stamp(&card.CreatedAt)
	card.UpdatedAt = card.CreatedAt
	s.flashcards[card.ID] = cloneFlashcard(*card)
	s.track("flashcards", card.ID)

	pack = clonePack(pack)
	pack.Questions = append(pack.Questions, card.ID)
	s.packs[pack.ID] = pack
	return nil
}

func (s *Store) GetFlashcard(_ context.Context, id string) (*models.Flashcard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.flashcards[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	f = cloneFlashcard(f)
	return &f, nil
}

func (s *Store) GetFlashcards(_ context.Context, ids []string) ([]models.Flashcard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cards := make([]models.Flashcard, 0, len(ids))
	for _, id := range ids {
		if f, ok := s.flashcards[id]; ok {
			cards = append(cards, cloneFlashcard(f))
		}
	}
	return cards, nil
}

func (s *Store) SaveFlashcard(_ context.Context, card *models.Flashcard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.flashcards[card.ID]; !ok {
		return storage.ErrNotFound
	}
	card.UpdatedAt = s.now()
	s.flashcards[card.ID] = cloneFlashcard(*card)
	return nil
}

func (s *Store) CountFlashcards(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.flashcards)), nil
}

// Comments

func cloneComment(c models.Comment) models.Comment {
	if c.Replies != nil {
		c.Replies = append(c.Replies[:0:0], c.Replies...)
	}
	return c
}

func (s *Store) AddComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.flashcards[comment.FlashcardID]
	if !ok {
		return storage.ErrNotFound
	}
	s.stamp(&comment.CreatedAt)
	s.comments[comment.ID] = cloneComment(*comment)
	s.track("comments", comment.ID)

	card = cloneFlashcard(card)
	card.Comments = append(card.Comments, comment.ID)
	s.flashcards[card.ID] = card
	return nil
}

func (s *Store) GetComment(_ context.Context, id string) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c = cloneComment(c)
	return &c, nil
}

func (s *Store) UpdateComment(_ context.Context, id string, fn func(*models.Comment) error) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c = cloneComment(c)
	if err := fn(&c); err != nil {
		return nil, err
	}
	s.comments[id] = cloneComment(c)
	return &c, nil
}

func (s *Store) flashcardComments(flashcardID string) []models.Comment {
	var comments []models.Comment
	for _, id := range s.order["comments"] {
		if c := s.comments[id]; c.FlashcardID == flashcardID {
			comments = append(comments, cloneComment(c))
		}
	}
	return comments
}

func (s *Store) ListComments(_ context.Context, flashcardID string, offset, limit int) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := s.flashcardComments(flashcardID)
	// newest first; later insertions win ties
	for i, j := 0, len(comments)-1; i < j; i, j = i+1, j-1 {
		comments[i], comments[j] = comments[j], comments[i]
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})

	if offset < 0 || offset >= len(comments) {
		return []models.Comment{}, nil
	}
	end := len(comments)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return comments[offset:end], nil
}

func (s *Store) CountComments(_ context.Context, flashcardID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.flashcardComments(flashcardID))), nil
}

func (s *Store) RemoveComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[comment.ID]; !ok {
		return storage.ErrNotFound
	}
	delete(s.comments, comment.ID)
	s.untrack("comments", comment.ID)

	if card, ok := s.flashcards[comment.FlashcardID]; ok {
		card = cloneFlashcard(card)
		card.Comments = models.Without(card.Comments, comment.ID)
		s.flashcards[card.ID] = card
	}
	return nil
}

// Exams

func cloneExam(e models.Exam) models.Exam {
	e.Questions = cloneStrings(e.Questions)
	return e
}

func (s *Store) CreateExam(_ context.Context, exam *models.Exam) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	class, ok := s.classes[exam.ClassID]
	if !ok {
		return storage.ErrNotFound
	}
	s.stamp(&exam.CreatedAt)
	s.exams[exam.ID] = cloneExam(*exam)
	s.track("exams", exam.ID)

	class = cloneClass(class)
	class.Exams = append(class.Exams, exam.ID)
	s.classes[class.ID] = class
	return nil
}

func (s *Store) GetExam(_ context.Context, id string) (*models.Exam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.exams[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	e = cloneExam(e)
	return &e, nil
}

func (s *Store) GetExamByQuestionPack(_ context.Context, packID string) (*models.Exam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order["exams"] {
		if e := s.exams[id]; e.QuestionPackID == packID {
			e = cloneExam(e)
			return &e, nil
		}
	}
	return nil, storage.ErrNotFound
}

// Results

func cloneResult(r models.Result) models.Result {
	answers := make([]models.AnswerRecord, len(r.Answers))
	for i, a := range r.Answers {
		a.SelectedAnswers = cloneStrings(a.SelectedAnswers)
		answers[i] = a
	}
	r.Answers = answers
	return r
}

func (s *Store) CreateResult(_ context.Context, result *models.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.results {
		if r.StudentID == result.StudentID && r.ExamID == result.ExamID {
			return storage.ErrDuplicate
		}
	}
	s.stamp(&result.CreatedAt)
	s.results[result.ID] = cloneResult(*result)
	s.track("results", result.ID)
	return nil
}

func (s *Store) filterResults(match func(models.Result) bool) []models.Result {
	var results []models.Result
	for _, id := range s.order["results"] {
		if r := s.results[id]; match(r) {
			results = append(results, cloneResult(r))
		}
	}
	return results
}

func (s *Store) ListResultsByExam(_ context.Context, examID string) ([]models.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterResults(func(r models.Result) bool { return r.ExamID == examID }), nil
}

func (s *Store) ListResultsByStudent(_ context.Context, studentID string) ([]models.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterResults(func(r models.Result) bool { return r.StudentID == studentID }), nil
}

// Conversations

func cloneConversation(c models.Conversation) models.Conversation {
	c.Participants = cloneStrings(c.Participants)
	c.Messages = cloneStrings(c.Messages)
	return c
}

func (s *Store) conversationByPair(pairKey string) (models.Conversation, bool) {
	for _, c := range s.conversations {
		if c.PairKey == pairKey {
			return c, true
		}
	}
	return models.Conversation{}, false
}

func (s *Store) FindConversation(_ context.Context, pairKey string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversationByPair(pairKey)
	if !ok {
		return nil, storage.ErrNotFound
	}
	c = cloneConversation(c)
	return &c, nil
}

func (s *Store) AppendMessage(_ context.Context, pairKey string, participants []string, msg *models.Message) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversationByPair(pairKey)
	if !ok {
		conv = models.Conversation{
			ID:           msg.ConversationID,
			PairKey:      pairKey,
			Participants: cloneStrings(participants),
			Messages:     []string{},
			CreatedAt:    s.now(),
		}
		s.track("conversations", conv.ID)
	}
	conv = cloneConversation(conv)

	msg.ConversationID = conv.ID
	s.stamp(&msg.CreatedAt)
	s.messages[msg.ID] = *msg
	s.track("messages", msg.ID)

	conv.Messages = append(conv.Messages, msg.ID)
	conv.UpdatedAt = s.now()
	s.conversations[conv.ID] = conv

	out := cloneConversation(conv)
	return &out, nil
}

func (s *Store) GetMessages(_ context.Context, ids []string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := make([]models.Message, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.messages[id]; ok {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}
