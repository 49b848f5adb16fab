package handlers

import (
	"github.com/codemule/adminbase/backend/internal/models"
	"github.com/codemule/adminbase/backend/internal/services"
	"github.com/gin-gonic/gin"
)

// HealthHandler provides health check and maintenance endpoints.
type HealthHandler struct {
	cleanupService *services.TokenCleanupService
}

func NewHealthHandler(cleanupSvc *services.TokenCleanupService) *HealthHandler {
	return &HealthHandler{cleanupService: cleanupSvc}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	// Database check
	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	// Queue mode
	taskQueue := services.GetTaskQueue()
	queueMode := "sync"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	// Active session count
	var activeSessions int64
	models.GetDB().Model(&models.RefreshToken{}).
		Where("revoked_at IS NULL AND expires_at > CURRENT_TIMESTAMP").
		Count(&activeSessions)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "adminbase",
		"components": gin.H{
			"database":        dbStatus,
			"queue_mode":      queueMode,
			"active_sessions": activeSessions,
		},
	})
}

// TriggerTokenCleanup runs the expired-token sweep immediately
// POST /api/admin/token-cleanup
func (h *HealthHandler) TriggerTokenCleanup(c *gin.Context) {
	deleted, err := h.cleanupService.RunNow()
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"deleted": deleted})
}
