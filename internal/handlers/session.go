package handlers

import (
	"strconv"

	"github.com/codemule/adminbase/backend/internal/middleware"
	"github.com/codemule/adminbase/backend/internal/services"
	"github.com/codemule/adminbase/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// SessionHandler lets users inspect and terminate their login sessions.
type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(sessionSvc *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionSvc}
}

// List returns the caller's active sessions
// GET /api/sessions
func (h *SessionHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	currentHash := currentTokenHash(c)

	sessions, err := h.sessionService.List(userID, currentHash)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, sessions)
}

// Terminate revokes one of the caller's sessions
// DELETE /api/sessions/:id
func (h *SessionHandler) Terminate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.sessionService.Terminate(uint(id), userID); err != nil {
		if err == services.ErrSessionNotFound {
			response.NotFound(c, "session not found")
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "session terminated"})
}

// TerminateOthers revokes every session except the caller's current one
// POST /api/sessions/terminate-others
func (h *SessionHandler) TerminateOthers(c *gin.Context) {
	currentHash := currentTokenHash(c)
	if currentHash == "" {
		response.BadRequest(c, "refresh token required")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.sessionService.TerminateOthers(userID, currentHash); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "other sessions terminated"})
}

// currentTokenHash derives the storage hash of the caller's refresh token,
// passed in the X-Refresh-Token header so GET requests can carry it too.
func currentTokenHash(c *gin.Context) string {
	token := c.GetHeader("X-Refresh-Token")
	if token == "" {
		return ""
	}
	return services.HashTokenSecret(token)
}
