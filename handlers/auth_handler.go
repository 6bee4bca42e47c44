package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"quizone/models"
	"quizone/services"
)

type AuthHandler struct {
	authService *services.AuthService
	images      services.ImageStore
}

func NewAuthHandler(authService *services.AuthService, images services.ImageStore) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		images:      images,
	}
}

// Register accepts a multipart form so a profile image can be uploaded with it.
func (h *AuthHandler) Register(c *gin.Context) {
	h.createUser(c, h.authService.Register)
}

// AddUser answers like Register but also requires phone number and gender.
func (h *AuthHandler) AddUser(c *gin.Context) {
	h.createUser(c, h.authService.AddUser)
}

func (h *AuthHandler) createUser(c *gin.Context, create func(context.Context, services.RegisterRequest) (*models.User, error)) {
	var req services.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	image, ok := uploadImage(c, h.images, "image")
	if !ok {
		return
	}
	req.Image = image

	user, err := create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"errorCode": services.CodeOK, "message": "User registered successfully", "user": user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type googleLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

func (h *AuthHandler) LoginWithGoogle(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.authService.LoginWithGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *AuthHandler) DecodeToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ident, err := h.authService.DecodeToken(req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ident})
}

// Me returns the identity carried by the access token.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"errorCode": services.CodeOK, "data": caller(c)})
}

type resetRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "If the email is registered, a reset link has been sent", nil)
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Password has been reset successfully", nil)
}
