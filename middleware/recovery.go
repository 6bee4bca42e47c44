package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizone/logger"
	"quizone/services"
)

// Recovery reports panics and answers with a generic 500 body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Critical(recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"errorCode": services.CodeInternal,
			"message":   "Internal server error",
		})
	})
}
