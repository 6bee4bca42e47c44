package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizone/services"
)

type ClassHandler struct {
	classService *services.ClassService
}

func NewClassHandler(classService *services.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req services.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	class, err := h.classService.Create(c.Request.Context(), caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Class created successfully", class)
}

func (h *ClassHandler) ListClasses(c *gin.Context) {
	classes, err := h.classService.ListForUser(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Classes retrieved successfully", classes)
}

func (h *ClassHandler) GetClass(c *gin.Context) {
	class, err := h.classService.Get(c.Request.Context(), caller(c), c.Param("classId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Class retrieved successfully", class)
}

func (h *ClassHandler) GetMembers(c *gin.Context) {
	members, err := h.classService.Members(c.Request.Context(), caller(c), c.Param("classId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Class members retrieved successfully", members)
}

type studentRequest struct {
	ClassID   string `json:"classId" binding:"required"`
	StudentID string `json:"studentId" binding:"required"`
}

func (h *ClassHandler) InviteStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	class, err := h.classService.Invite(c.Request.Context(), caller(c), req.ClassID, req.StudentID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Student invited successfully", class)
}

func (h *ClassHandler) RemoveStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	class, err := h.classService.RemoveStudent(c.Request.Context(), caller(c), req.ClassID, req.StudentID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Student removed successfully", class)
}

func (h *ClassHandler) JoinByInvite(c *gin.Context) {
	class, joined, err := h.classService.JoinByInvite(c.Request.Context(), caller(c), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	message := "Joined class successfully"
	if !joined {
		message = "You are already a member of this class"
	}
	respond(c, http.StatusOK, message, class)
}

func (h *ClassHandler) DeleteClass(c *gin.Context) {
	if err := h.classService.Delete(c.Request.Context(), caller(c), c.Param("classId")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Class deleted successfully", nil)
}
