package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizone/services"
)

type UserHandler struct {
	userService *services.UserService
	images      services.ImageStore
}

func NewUserHandler(userService *services.UserService, images services.ImageStore) *UserHandler {
	return &UserHandler{
		userService: userService,
		images:      images,
	}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Get user success", user)
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	users, err := h.userService.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Search completed successfully", users)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Fetched all users successfully", users)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	image, ok := uploadImage(c, h.images, "image")
	if !ok {
		return
	}
	req.Image = image

	user, err := h.userService.UpdateProfile(c.Request.Context(), caller(c), c.Param("userId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"errorCode": services.CodeOK, "message": "User profile updated successfully", "user": user})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	user, err := h.userService.Delete(c.Request.Context(), caller(c), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"errorCode": services.CodeOK, "message": "User deleted successfully.", "user": user})
}
