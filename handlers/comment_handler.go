package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizone/middleware"
	"quizone/services"
)

type CommentHandler struct {
	commentService *services.CommentService
	images         services.ImageStore
}

func NewCommentHandler(commentService *services.CommentService, images services.ImageStore) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		images:         images,
	}
}

func (h *CommentHandler) AddComment(c *gin.Context) {
	var req services.CommentRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	image, ok := uploadImage(c, h.images, "image")
	if !ok {
		return
	}
	req.Image = image

	comment, err := h.commentService.Add(c.Request.Context(), caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Comment added successfully", comment)
}

// GetComments pages with ?page=&limit=, defaulting to the first four comments.
func (h *CommentHandler) GetComments(c *gin.Context) {
	page, err := h.commentService.List(c.Request.Context(), caller(c), c.Param("flashcardId"),
		queryInt(c, "page", 1), queryInt(c, "limit", 4))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"errorCode":  services.CodeOK,
		"message":    "Comments retrieved successfully",
		"data":       page.Data,
		"total":      page.Total,
		"page":       page.Page,
		"totalPages": page.TotalPages,
	})
}

func (h *CommentHandler) GetComment(c *gin.Context) {
	var callerID string
	if ident := middleware.Identity(c); ident != nil {
		callerID = ident.ID
	}
	comment, err := h.commentService.Get(c.Request.Context(), callerID, c.Param("commentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Comment retrieved successfully", comment)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	err := h.commentService.Delete(c.Request.Context(), caller(c), c.Param("questionPackId"), c.Param("commentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Comment deleted successfully", nil)
}

type replyRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *CommentHandler) AddReply(c *gin.Context) {
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	reply, err := h.commentService.AddReply(c.Request.Context(), caller(c), c.Param("commentId"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Reply added successfully", reply)
}

func (h *CommentHandler) DeleteReply(c *gin.Context) {
	err := h.commentService.DeleteReply(c.Request.Context(), caller(c), c.Param("commentId"), c.Param("replyId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Reply deleted successfully", nil)
}
