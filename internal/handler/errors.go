package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jetrent/internal/search"
	"jetrent/internal/service"
)

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConversationBusy):
		return http.StatusConflict
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrInvalidBookmark),
		errors.Is(err, service.ErrInvalidLabel),
		errors.Is(err, search.ErrLocationRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...} with the status matching err
func respondError(c *gin.Context, prefix string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && prefix != "" {
		msg = prefix + ": " + msg
	}
	c.JSON(status, gin.H{"error": msg})
}
