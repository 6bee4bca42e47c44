package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quizone/services"
)

type FlashcardHandler struct {
	flashcardService *services.FlashcardService
	images           services.ImageStore
}

func NewFlashcardHandler(flashcardService *services.FlashcardService, images services.ImageStore) *FlashcardHandler {
	return &FlashcardHandler{
		flashcardService: flashcardService,
		images:           images,
	}
}

// flashcardForm is the multipart shape of a flashcard. answers and correctAnswers are
// JSON-encoded arrays because a form field carries a single string.
type flashcardForm struct {
	QuestionPackID string  `form:"questionPackId"`
	QuestionText   *string `form:"questionText"`
	Answers        string  `form:"answers"`
	CorrectAnswers string  `form:"correctAnswers"`
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

func decodeForm(form flashcardForm) (answers []string, correct []int64, err error) {
	if form.Answers != "" {
		if err = json.Unmarshal([]byte(form.Answers), &answers); err != nil {
			return nil, nil, err
		}
	}
	if form.CorrectAnswers != "" {
		if err = json.Unmarshal([]byte(form.CorrectAnswers), &correct); err != nil {
			return nil, nil, err
		}
	}
	return answers, correct, nil
}

func (h *FlashcardHandler) AddFlashcard(c *gin.Context) {
	var req services.FlashcardRequest
	if isMultipart(c) {
		var form flashcardForm
		if err := c.ShouldBind(&form); err != nil {
			badRequest(c, err.Error())
			return
		}
		answers, correct, err := decodeForm(form)
		if err != nil {
			badRequest(c, "answers and correctAnswers must be JSON arrays")
			return
		}
		req.QuestionPackID = form.QuestionPackID
		req.Answers = answers
		req.CorrectAnswers = correct
		if form.QuestionText != nil {
			req.QuestionText = *form.QuestionText
		}
		image, ok := uploadImage(c, h.images, "questionImage")
		if !ok {
			return
		}
		req.QuestionImage = image
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	card, err := h.flashcardService.Add(c.Request.Context(), caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Flashcard added successfully", card)
}

func (h *FlashcardHandler) GetByQuestionPack(c *gin.Context) {
	pack, err := h.flashcardService.GetByQuestionPack(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "QuestionPack retrieved successfully", pack)
}

func (h *FlashcardHandler) UpdateFlashcard(c *gin.Context) {
	var req services.UpdateFlashcardRequest
	if isMultipart(c) {
		var form flashcardForm
		if err := c.ShouldBind(&form); err != nil {
			badRequest(c, err.Error())
			return
		}
		answers, correct, err := decodeForm(form)
		if err != nil {
			badRequest(c, "answers and correctAnswers must be JSON arrays")
			return
		}
		req.QuestionText = form.QuestionText
		req.Answers = answers
		req.CorrectAnswers = correct
		image, ok := uploadImage(c, h.images, "questionImage")
		if !ok {
			return
		}
		req.QuestionImage = image
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	card, err := h.flashcardService.Update(c.Request.Context(), caller(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Flashcard updated successfully", card)
}
