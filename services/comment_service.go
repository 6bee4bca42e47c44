package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizone/models"
	"quizone/storage"
)

const (
	defaultCommentPage  = 1
	defaultCommentLimit = 4
	maxCommentLimit     = 50
)

type CommentService struct {
	store storage.Store
}

func NewCommentService(store storage.Store) *CommentService {
	return &CommentService{store: store}
}

type CommentRequest struct {
	FlashcardID string `json:"flashcardId" form:"flashcardId"`
	Content     string `json:"content" form:"content"`
	Image       string `json:"-" form:"-"`
}

type ReplyView struct {
	models.Reply
	User *models.UserSummary `json:"user,omitempty"`
}

type CommentView struct {
	models.Comment
	User    *models.UserSummary `json:"user,omitempty"`
	Replies []ReplyView         `json:"replies"`
	IsOwner bool                `json:"isOwner"`
}

type CommentPage struct {
	Data       []CommentView `json:"data"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
}

func (s *CommentService) Add(ctx context.Context, ident *models.Identity, req CommentRequest) (*models.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" || req.FlashcardID == "" {
		return nil, Invalid(CodeInvalidFields, "Content and flashcardId are required fields")
	}
	comment := &models.Comment{
		ID:          uuid.NewString(),
		UserID:      ident.ID,
		Content:     content,
		Image:       req.Image,
		FlashcardID: req.FlashcardID,
		Replies:     []models.Reply{},
	}
	if err := s.store.AddComment(ctx, comment); err != nil {
		return nil, lookupErr(err, CodeNotFound, "Flashcard not found")
	}
	return comment, nil
}

// List returns one page of a flashcard's comments, newest first.
func (s *CommentService) List(ctx context.Context, ident *models.Identity, flashcardID string, page, limit int) (*CommentPage, error) {
	if page < 1 {
		page = defaultCommentPage
	}
	if limit < 1 {
		limit = defaultCommentLimit
	}
	if limit > maxCommentLimit {
		limit = maxCommentLimit
	}

	// a page past any representable offset is empty
	comments := []models.Comment{}
	if page-1 <= math.MaxInt/limit {
		var err error
		comments, err = s.store.ListComments(ctx, flashcardID, (page-1)*limit, limit)
		if err != nil {
			return nil, Internal(err, "An error occurred while fetching comments")
		}
	}
	total, err := s.store.CountComments(ctx, flashcardID)
	if err != nil {
		return nil, Internal(err, "An error occurred while fetching comments")
	}

	views, err := s.expand(ctx, comments, ident.ID)
	if err != nil {
		return nil, err
	}
	return &CommentPage{
		Data:       views,
		Total:      total,
		Page:       page,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (s *CommentService) Get(ctx context.Context, callerID, commentID string) (*CommentView, error) {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, lookupErr(err, CodeNotFound, "Comment not found")
	}
	views, err := s.expand(ctx, []models.Comment{*comment}, callerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Delete is allowed to the author, the teacher owning the pack, and admins.
func (s *CommentService) Delete(ctx context.Context, ident *models.Identity, packID, commentID string) error {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return lookupErr(err, CodeNotFound, "Comment not found")
	}

	allowed := comment.UserID == ident.ID || ident.IsAdmin()
	if !allowed {
		pack, err := s.store.GetQuestionPack(ctx, packID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return Internal(err, "An error occurred while deleting the comment")
		}
		allowed = pack != nil && pack.IsOwner(ident.ID)
	}
	if !allowed {
		return Forbidden(CodeAccessDenied, "You are not authorized to delete this comment")
	}

	if err := s.store.RemoveComment(ctx, comment); err != nil {
		return lookupErr(err, CodeNotFound, "Comment not found")
	}
	return nil
}

func (s *CommentService) AddReply(ctx context.Context, ident *models.Identity, commentID, content string) (*models.Reply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, Invalid(CodeInvalidFields, "Content is required")
	}
	reply := models.Reply{
		ID:        uuid.NewString(),
		UserID:    ident.ID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.store.UpdateComment(ctx, commentID, func(c *models.Comment) error {
		c.Replies = append(c.Replies, reply)
		return nil
	})
	if err != nil {
		return nil, lookupErr(err, CodeNotFound, "Comment not found")
	}
	return &reply, nil
}

// DeleteReply is allowed to the reply's author only.
func (s *CommentService) DeleteReply(ctx context.Context, ident *models.Identity, commentID, replyID string) error {
	_, err := s.store.UpdateComment(ctx, commentID, func(c *models.Comment) error {
		i := c.ReplyIndex(replyID)
		if i < 0 {
			return NotFound(CodeNotFound, "Reply not found")
		}
		if c.Replies[i].UserID != ident.ID {
			return Forbidden(CodeAccessDenied, "You are not authorized to delete this reply")
		}
		c.Replies = append(c.Replies[:i], c.Replies[i+1:]...)
		return nil
	})
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return se
		}
		return lookupErr(err, CodeNotFound, "Comment not found")
	}
	return nil
}

func (s *CommentService) expand(ctx context.Context, comments []models.Comment, callerID string) ([]CommentView, error) {
	var ids []string
	for _, c := range comments {
		ids = append(ids, c.UserID)
		for _, r := range c.Replies {
			ids = append(ids, r.UserID)
		}
	}
	users, err := s.store.GetUsers(ctx, ids)
	if err != nil {
		return nil, Internal(err, "An error occurred while fetching comments")
	}
	byID := make(map[string]models.UserSummary, len(users))
	for i := range users {
		byID[users[i].ID] = users[i].Summary()
	}
	lookup := func(id string) *models.UserSummary {
		if u, ok := byID[id]; ok {
			return &u
		}
		return nil
	}

	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		v := CommentView{
			Comment: c,
			User:    lookup(c.UserID),
			Replies: make([]ReplyView, 0, len(c.Replies)),
			IsOwner: c.UserID == callerID,
		}
		for _, r := range c.Replies {
			v.Replies = append(v.Replies, ReplyView{Reply: r, User: lookup(r.UserID)})
		}
		views = append(views, v)
	}
	return views, nil
}
