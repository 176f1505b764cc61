package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jetrent/internal/model"
	"jetrent/internal/service"
)

// BookmarkHandler handles bookmark and label HTTP requests
type BookmarkHandler struct {
	bookmarkService *service.BookmarkService
}

// NewBookmarkHandler creates a new bookmark handler
func NewBookmarkHandler(bookmarkService *service.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarkService: bookmarkService}
}

// List handles GET /api/v1/bookmarks
func (h *BookmarkHandler) List(c *gin.Context) {
	bookmarks, err := h.bookmarkService.List(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list bookmarks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks})
}

// Add handles POST /api/v1/bookmarks
func (h *BookmarkHandler) Add(c *gin.Context) {
	var req model.BookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	bookmark, err := h.bookmarkService.Add(c.Request.Context(), req.Listing)
	if err != nil {
		respondError(c, "Failed to add bookmark", err)
		return
	}
	c.JSON(http.StatusCreated, bookmark)
}

// Remove handles DELETE /api/v1/bookmarks/:id
func (h *BookmarkHandler) Remove(c *gin.Context) {
	if err := h.bookmarkService.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "Failed to remove bookmark", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Labels handles GET /api/v1/bookmarks/:id/labels
func (h *BookmarkHandler) Labels(c *gin.Context) {
	labels, err := h.bookmarkService.BookmarkLabels(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to get bookmark labels", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels})
}

// AttachLabel handles POST /api/v1/bookmarks/:id/labels/:labelId
func (h *BookmarkHandler) AttachLabel(c *gin.Context) {
	if err := h.bookmarkService.AttachLabel(c.Request.Context(), c.Param("id"), c.Param("labelId")); err != nil {
		respondError(c, "Failed to attach label", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DetachLabel handles DELETE /api/v1/bookmarks/:id/labels/:labelId
func (h *BookmarkHandler) DetachLabel(c *gin.Context) {
	if err := h.bookmarkService.DetachLabel(c.Request.Context(), c.Param("id"), c.Param("labelId")); err != nil {
		respondError(c, "Failed to detach label", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListLabels handles GET /api/v1/labels
func (h *BookmarkHandler) ListLabels(c *gin.Context) {
	labels, err := h.bookmarkService.Labels(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list labels", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels})
}

// CreateLabel handles POST /api/v1/labels
func (h *BookmarkHandler) CreateLabel(c *gin.Context) {
	var req model.LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	label, err := h.bookmarkService.CreateLabel(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Failed to create label", err)
		return
	}
	c.JSON(http.StatusCreated, label)
}

// UpdateLabel handles PATCH /api/v1/labels/:id
func (h *BookmarkHandler) UpdateLabel(c *gin.Context) {
	var req model.LabelUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	label, err := h.bookmarkService.UpdateLabel(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, "Failed to update label", err)
		return
	}
	c.JSON(http.StatusOK, label)
}

// DeleteLabel handles DELETE /api/v1/labels/:id
func (h *BookmarkHandler) DeleteLabel(c *gin.Context) {
	if err := h.bookmarkService.DeleteLabel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "Failed to delete label", err)
		return
	}
	c.Status(http.StatusNoContent)
}
