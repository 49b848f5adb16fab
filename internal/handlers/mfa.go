package handlers

import (
	"github.com/codemule/adminbase/backend/internal/middleware"
	"github.com/codemule/adminbase/backend/internal/services"
	"github.com/codemule/adminbase/backend/internal/utils"
	"github.com/codemule/adminbase/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// MFAHandler manages TOTP enrollment for the authenticated user.
type MFAHandler struct {
	mfaService  *services.MFAService
	authService *services.AuthService
}

func NewMFAHandler(mfaSvc *services.MFAService, authSvc *services.AuthService) *MFAHandler {
	return &MFAHandler{mfaService: mfaSvc, authService: authSvc}
}

// BeginEnrollment generates a TOTP secret and provisioning URI
// POST /api/auth/mfa/enroll
func (h *MFAHandler) BeginEnrollment(c *gin.Context) {
	user, err := h.authService.Identify(middleware.GetUserID(c))
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	if user.MFAEnabled {
		response.BadRequest(c, "MFA is already enabled")
		return
	}

	secret, uri, err := h.mfaService.BeginTOTPEnrollment(user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"secret": secret, "uri": uri})
}

type confirmEnrollmentRequest struct {
	Secret   string `json:"secret" binding:"required"`
	Code     string `json:"code" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ConfirmEnrollment verifies the first TOTP code and enables MFA
// POST /api/auth/mfa/enroll/confirm
func (h *MFAHandler) ConfirmEnrollment(c *gin.Context) {
	var req confirmEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	if !h.verifyPassword(c, userID, req.Password) {
		return
	}

	backupCodes, err := h.mfaService.ConfirmTOTPEnrollment(userID, req.Secret, req.Code)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success(c, gin.H{"backup_codes": backupCodes})
}

type disableMFARequest struct {
	Password string `json:"password" binding:"required"`
}

// Disable turns MFA off after reauthentication
// POST /api/auth/mfa/disable
func (h *MFAHandler) Disable(c *gin.Context) {
	var req disableMFARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	if !h.verifyPassword(c, userID, req.Password) {
		return
	}

	if err := h.mfaService.DisableMFA(userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "MFA disabled"})
}

// RegenerateBackupCodes replaces the user's backup codes
// POST /api/auth/mfa/backup-codes
func (h *MFAHandler) RegenerateBackupCodes(c *gin.Context) {
	var req disableMFARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	if !h.verifyPassword(c, userID, req.Password) {
		return
	}

	codes, err := h.mfaService.RegenerateBackupCodes(userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"backup_codes": codes})
}

// verifyPassword reauthenticates before sensitive MFA changes. Writes the
// error response itself and reports whether the caller may proceed.
func (h *MFAHandler) verifyPassword(c *gin.Context, userID uint, password string) bool {
	user, err := h.authService.Identify(userID)
	if err != nil {
		response.NotFound(c, "user not found")
		return false
	}
	if user.AuthType == "local" && !utils.CheckPassword(password, user.Password) {
		response.Unauthorized(c, "invalid password")
		return false
	}
	return true
}
