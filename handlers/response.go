package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quizone/logger"
	"quizone/middleware"
	"quizone/models"
	"quizone/services"
)

const genericMessage = "Internal server error"

func errorBody(code int, message string) gin.H {
	return gin.H{"errorCode": code, "message": message}
}

// respondError writes err as {errorCode, message}. Anything that is not an expected
// service failure is reported and answered with a generic message.
func respondError(c *gin.Context, err error) {
	var se *services.Error
	if !errors.As(err, &se) {
		logger.Error("unhandled error on "+c.FullPath(), err, nil)
		c.JSON(http.StatusInternalServerError, errorBody(services.CodeInternal, genericMessage))
		return
	}
	if se.Kind == services.KindInternal {
		logger.Error(se.Message, se, map[string]interface{}{"path": c.FullPath()})
	}
	c.JSON(se.HTTPStatus(), errorBody(se.Code, se.Message))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorBody(services.CodeInvalidFields, message))
}

// caller returns the authenticated identity. Routes using it sit behind AuthMiddleware.
func caller(c *gin.Context) *models.Identity {
	if ident := middleware.Identity(c); ident != nil {
		return ident
	}
	return &models.Identity{}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return n
}

// uploadImage stores the optional multipart file field and returns its URL, or "" when
// the request carries none.
func uploadImage(c *gin.Context, images services.ImageStore, field string) (string, bool) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", true
	}
	url, err := images.Save(file)
	if err != nil {
		logger.Error("image upload failed", err, map[string]interface{}{"field": field})
		c.JSON(http.StatusBadRequest, errorBody(services.CodeUploadFailed, "Image upload failed"))
		return "", false
	}
	return url, true
}

// respond writes the standard success envelope.
func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{"errorCode": services.CodeOK, "message": message, "data": data})
}
