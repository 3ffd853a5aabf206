package handlers

import (
	"net/http"

	"fitpro-backend/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles HTTP requests for the fitness assistant
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// SendMessageRequest represents the request body for a chat turn
type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// SendMessage handles POST /api/chat/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.chat.Submit(c.Request.Context(), req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"outcome": result.Outcome,
		"reply":   result.Reply,
	})
}

// GetMessages handles GET /api/chat/messages
func (h *ChatHandler) GetMessages(c *gin.Context) {
	data := gin.H{
		"messages": h.chat.Messages(),
		"state":    h.chat.State(),
	}
	if lastErr := h.chat.LastError(); lastErr != "" {
		data["last_error"] = lastErr
	}
	respondOK(c, http.StatusOK, data)
}
