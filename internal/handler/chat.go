package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jetrent/internal/model"
	"jetrent/internal/service"
)

// ChatHandler handles conversation HTTP requests
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Submit handles POST /api/v1/chat
func (h *ChatHandler) Submit(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.chatService.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Chat failed", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitStream handles POST /api/v1/chat/stream - SSE streaming chat
func (h *ChatHandler) SubmitStream(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}
	setSSEHeaders(c)
	c.Status(http.StatusOK)

	result, err := h.chatService.SubmitStream(c.Request.Context(), &req, func(event string, data any) error {
		if err := sendSSE(c, event, data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil && result == nil {
		_ = sendSSE(c, service.EventError, map[string]any{"error": err.Error(), "status": statusFor(err)})
		flusher.Flush()
		return
	}

	_ = sendSSE(c, service.EventDone, result)
	flusher.Flush()
}

// Get handles GET /api/v1/conversations/:id
func (h *ChatHandler) Get(c *gin.Context) {
	conversation, err := h.chatService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to get conversation", err)
		return
	}
	c.JSON(http.StatusOK, conversation)
}

// Reset handles DELETE /api/v1/conversations/:id
func (h *ChatHandler) Reset(c *gin.Context) {
	state, err := h.chatService.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to reset conversation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// SetResultsPanel handles PUT /api/v1/conversations/:id/results-panel
func (h *ChatHandler) SetResultsPanel(c *gin.Context) {
	var req model.ResultsPanelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	state, err := h.chatService.SetResultsPanel(c.Request.Context(), c.Param("id"), *req.Visible)
	if err != nil {
		respondError(c, "Failed to update conversation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results_panel_visible": state.ResultsPanelVisible})
}
