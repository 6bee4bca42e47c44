package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizone/services"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.adminService.Dashboard(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Dashboard data retrieved successfully", dashboard)
}
