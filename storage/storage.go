// Package storage declares the persistence contracts used by the services.
//
// Every entity lives in its own collection and refers to others by id. Operations that
// touch two records (an exam and its class, a message and its conversation) are single
// calls so that implementations can run them atomically.
package storage

import (
	"context"
	"errors"

	"quizone/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	// GetUsers returns the users that exist among ids, in ids order.
	GetUsers(ctx context.Context, ids []string) ([]models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByLogin matches either the username or the email.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]models.User, error)
	// SearchUsers does a case-insensitive match on username, email or phone number.
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

type ClassStore interface {
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, id string) (*models.Class, error)
	GetClassByInvitation(ctx context.Context, token string) (*models.Class, error)
	// UpdateClass loads the class, applies fn and saves the result while holding the
	// record. Returning an error from fn aborts the update.
	UpdateClass(ctx context.Context, id string, fn func(*models.Class) error) (*models.Class, error)
	DeleteClass(ctx context.Context, id string) error
	// ListClassesForUser returns classes the user teaches or attends.
	ListClassesForUser(ctx context.Context, userID string) ([]models.Class, error)
}

type QuestionPackStore interface {
	CreateQuestionPack(ctx context.Context, pack *models.QuestionPack) error
	GetQuestionPack(ctx context.Context, id string) (*models.QuestionPack, error)
	SaveQuestionPack(ctx context.Context, pack *models.QuestionPack) error
	DeleteQuestionPack(ctx context.Context, id string) error
	ListPublicQuestionPacks(ctx context.Context) ([]models.QuestionPack, error)
	ListQuestionPacks(ctx context.Context) ([]models.QuestionPack, error)
	ListQuestionPacksByTeacher(ctx context.Context, teacherID string) ([]models.QuestionPack, error)
	// SearchQuestionPacks does a case-insensitive match on title, semester or subject.
	SearchQuestionPacks(ctx context.Context, query string) ([]models.QuestionPack, error)
	CountQuestionPacks(ctx context.Context) (int64, error)
}

type FlashcardStore interface {
	// AddFlashcard creates the card and appends its id to the owning pack.
	AddFlashcard(ctx context.Context, card *models.Flashcard) error
	GetFlashcard(ctx context.Context, id string) (*models.Flashcard, error)
	// GetFlashcards returns the cards that exist among ids, in ids order.
	GetFlashcards(ctx context.Context, ids []string) ([]models.Flashcard, error)
	SaveFlashcard(ctx context.Context, card *models.Flashcard) error
	CountFlashcards(ctx context.Context) (int64, error)
}

type CommentStore interface {
	// AddComment creates the comment and appends its id to the flashcard.
	AddComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	UpdateComment(ctx context.Context, id string, fn func(*models.Comment) error) (*models.Comment, error)
	// ListComments returns a page of a flashcard's comments, newest first.
	ListComments(ctx context.Context, flashcardID string, offset, limit int) ([]models.Comment, error)
	CountComments(ctx context.Context, flashcardID string) (int64, error)
	// RemoveComment deletes the comment and pulls its id from the flashcard.
	RemoveComment(ctx context.Context, comment *models.Comment) error
}

type ExamStore interface {
	// CreateExam creates the exam and appends its id to its class.
	CreateExam(ctx context.Context, exam *models.Exam) error
	GetExam(ctx context.Context, id string) (*models.Exam, error)
	GetExamByQuestionPack(ctx context.Context, packID string) (*models.Exam, error)
}

type ResultStore interface {
	// CreateResult fails with ErrDuplicate when the student already has a result for
	// the exam.
	CreateResult(ctx context.Context, result *models.Result) error
	ListResultsByExam(ctx context.Context, examID string) ([]models.Result, error)
	ListResultsByStudent(ctx context.Context, studentID string) ([]models.Result, error)
}

type ConversationStore interface {
	FindConversation(ctx context.Context, pairKey string) (*models.Conversation, error)
	// AppendMessage finds the conversation for pairKey, creating it with participants
	// when missing, creates msg in it and appends the message id. A new conversation
	// takes its id from msg.ConversationID.
	AppendMessage(ctx context.Context, pairKey string, participants []string, msg *models.Message) (*models.Conversation, error)
	// GetMessages returns the messages that exist among ids, in ids order.
	GetMessages(ctx context.Context, ids []string) ([]models.Message, error)
}

type Store interface {
	UserStore
	ClassStore
	QuestionPackStore
	FlashcardStore
	CommentStore
	ExamStore
	ResultStore
	ConversationStore
}
