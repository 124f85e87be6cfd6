package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"music-room/internal/domain"
)

func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

func SuccessResponse(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

// ValidationErrorResponse 返回 422 和逐字段的错误详情
func ValidationErrorResponse(c *gin.Context, details domain.ValidationErrors) {
	if details == nil {
		details = domain.ValidationErrors{}
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   "Validation failed",
		"details": details,
	})
}
