package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizone/services"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// SendMessage posts to the user named by :id and answers with the stored message.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	msg, err := h.messageService.SendMessage(c.Request.Context(), caller(c).ID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) GetMessages(c *gin.Context) {
	messages, err := h.messageService.GetMessages(c.Request.Context(), caller(c).ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}
