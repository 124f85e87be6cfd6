package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"music-room/internal/domain"
	"music-room/internal/service"
)

// HandleServiceError 把 Service 层的错误映射为 HTTP 响应
func HandleServiceError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrRoomNotFound) {
		ErrorResponse(c, http.StatusNotFound, "Room not found")
	} else if errors.Is(err, service.ErrValidationFailed) {
		var details domain.ValidationErrors
		errors.As(err, &details)
		ValidationErrorResponse(c, details)
	} else {
		// Log the internal error for debugging
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
