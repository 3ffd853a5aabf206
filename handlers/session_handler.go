package handlers

import (
	"errors"
	"net/http"

	"fitpro-backend/models"
	"fitpro-backend/service"

	"github.com/gin-gonic/gin"
)

// SessionHandler handles HTTP requests for the session and notices
type SessionHandler struct {
	sessions *service.SessionService
	notifier *service.Notifier
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService, notifier *service.Notifier) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		notifier: notifier,
	}
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest represents the request body for creating an account
type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// ChangePasswordRequest represents the request body for changing the password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// GetSession handles GET /api/session
func (h *SessionHandler) GetSession(c *gin.Context) {
	respondOK(c, http.StatusOK, h.sessions.Snapshot())
}

// Login handles POST /api/session/login
func (h *SessionHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"identity": result.Identity,
		"redirect": result.Redirect,
	})
}

// Signup handles POST /api/session/signup
func (h *SessionHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.sessions.Signup(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, gin.H{
		"identity": result.Identity,
		"redirect": result.Redirect,
	})
}

// Logout handles POST /api/session/logout. The session is gone locally
// even when the remote delete fails, so the error is reported with 200.
func (h *SessionHandler) Logout(c *gin.Context) {
	result, err := h.sessions.Logout(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrOperationInFlight) {
			respondServiceError(c, err)
			return
		}
		respondOK(c, http.StatusOK, gin.H{
			"redirect": service.LandingRoute,
			"warning":  models.Message(err),
		})
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"redirect": result.Redirect,
	})
}

// ChangePassword handles PUT /api/session/password
func (h *SessionHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	err := h.sessions.ChangePassword(c.Request.Context(), service.ChangePasswordRequest{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"message": "Password changed successfully!",
	})
}

// GetNotification handles GET /api/notifications
func (h *SessionHandler) GetNotification(c *gin.Context) {
	notice, ok := h.notifier.Current()
	if !ok {
		respondOK(c, http.StatusOK, nil)
		return
	}
	respondOK(c, http.StatusOK, notice)
}
