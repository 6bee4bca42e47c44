package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizone/middleware"
	"quizone/services"
)

type QuestionPackHandler struct {
	packService *services.QuestionPackService
	images      services.ImageStore
}

func NewQuestionPackHandler(packService *services.QuestionPackService, images services.ImageStore) *QuestionPackHandler {
	return &QuestionPackHandler{
		packService: packService,
		images:      images,
	}
}

func (h *QuestionPackHandler) bind(c *gin.Context) (services.QuestionPackRequest, bool) {
	var req services.QuestionPackRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err.Error())
		return req, false
	}
	image, ok := uploadImage(c, h.images, "imagePreview")
	if !ok {
		return req, false
	}
	req.ImagePreview = image
	return req, true
}

func (h *QuestionPackHandler) CreateQuestionPack(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	pack, err := h.packService.Create(c.Request.Context(), caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Question pack created successfully", pack)
}

func (h *QuestionPackHandler) ListPublic(c *gin.Context) {
	packs, err := h.packService.ListPublic(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Question packs retrieved successfully", packs)
}

func (h *QuestionPackHandler) ListAll(c *gin.Context) {
	packs, err := h.packService.ListAll(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Question packs retrieved successfully", packs)
}

// Search is reachable without a token; anonymous callers only see public packs.
func (h *QuestionPackHandler) Search(c *gin.Context) {
	packs, err := h.packService.Search(c.Request.Context(), middleware.Identity(c), c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Search completed successfully", packs)
}

func (h *QuestionPackHandler) ListByTeacher(c *gin.Context) {
	packs, err := h.packService.ListByTeacher(c.Request.Context(), caller(c), c.Param("teacherId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Question packs retrieved successfully", packs)
}

func (h *QuestionPackHandler) GetQuestionPack(c *gin.Context) {
	detail, err := h.packService.Get(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Question pack retrieved successfully", detail)
}

func (h *QuestionPackHandler) UpdateQuestionPack(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	pack, err := h.packService.Update(c.Request.Context(), caller(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Question pack updated successfully", pack)
}

func (h *QuestionPackHandler) DeleteQuestionPack(c *gin.Context) {
	if err := h.packService.Delete(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Question pack deleted successfully", nil)
}

type classPackRequest struct {
	ClassID        string `json:"classId" binding:"required"`
	QuestionPackID string `json:"questionPackId" binding:"required"`
}

func (h *QuestionPackHandler) AddToClass(c *gin.Context) {
	var req classPackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	class, added, err := h.packService.AddToClass(c.Request.Context(), caller(c), req.ClassID, req.QuestionPackID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !added {
		c.JSON(http.StatusOK, gin.H{"errorCode": services.CodePackLink, "message": "Question pack is already in this class", "data": class})
		return
	}
	respond(c, http.StatusOK, "Question pack added to class successfully", class)
}

func (h *QuestionPackHandler) RemoveFromClass(c *gin.Context) {
	var req classPackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	class, err := h.packService.RemoveFromClass(c.Request.Context(), caller(c), req.ClassID, req.QuestionPackID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Question pack removed from class successfully", class)
}
