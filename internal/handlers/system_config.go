package handlers

import (
	"github.com/codemule/adminbase/backend/internal/services"
	"github.com/codemule/adminbase/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type SystemConfigHandler struct {
	configService *services.SystemConfigService
}

func NewSystemConfigHandler(configSvc *services.SystemConfigService) *SystemConfigHandler {
	return &SystemConfigHandler{configService: configSvc}
}

// List returns settings, optionally filtered by group
// GET /api/settings?group=email
func (h *SystemConfigHandler) List(c *gin.Context) {
	group := c.Query("group")

	var (
		configs interface{}
		err     error
	)
	if group != "" {
		configs, err = h.configService.ListByGroup(group)
	} else {
		configs, err = h.configService.List()
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, configs)
}

type updateSettingsRequest struct {
	Values map[string]string `json:"values" binding:"required"`
}

// Update writes a batch of settings atomically
// PUT /api/settings
func (h *SystemConfigHandler) Update(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if len(req.Values) == 0 {
		response.BadRequest(c, "no settings provided")
		return
	}

	if err := h.configService.SetBatch(req.Values); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "settings updated"})
}
