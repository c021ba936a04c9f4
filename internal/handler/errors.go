package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ChlorophyllA/skin2/internal/apperrors"
)

// statusFor maps an application error to an HTTP status.
func statusFor(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeExternal:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// abortWithError records err on the context for the request logger and
// writes msg with the mapped status.
func abortWithError(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": msg})
}
