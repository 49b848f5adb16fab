package handlers

import (
	"errors"
	"time"

	"github.com/codemule/adminbase/backend/internal/middleware"
	"github.com/codemule/adminbase/backend/internal/services"
	"github.com/codemule/adminbase/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  *services.AuthService
	userService  *services.UserService
	resetService *services.PasswordResetService
}

func NewAuthHandler(authSvc *services.AuthService, userSvc *services.UserService, resetSvc *services.PasswordResetService) *AuthHandler {
	return &AuthHandler{
		authService:  authSvc,
		userService:  userSvc,
		resetService: resetSvc,
	}
}

type loginResponse struct {
	AccessToken     string      `json:"access_token"`
	AccessExpireAt  time.Time   `json:"access_expire_at"`
	RefreshToken    string      `json:"refresh_token"`
	RefreshExpireAt time.Time   `json:"refresh_expire_at"`
	User            interface{} `json:"user,omitempty"`
}

type mfaPendingResponse struct {
	MFARequired bool   `json:"mfa_required"`
	ChallengeID string `json:"challenge_id"`
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	device := services.NewDeviceMeta(c.Request.UserAgent(), c.ClientIP(), c.GetHeader("X-Device-Fingerprint"))
	result, err := h.authService.Login(&req, device)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	if result.MFARequired {
		response.Success(c, mfaPendingResponse{MFARequired: true, ChallengeID: result.ChallengeID})
		return
	}

	response.Success(c, loginResponse{
		AccessToken:     result.Session.AccessToken,
		AccessExpireAt:  result.Session.AccessExpireAt,
		RefreshToken:    result.Session.RefreshToken,
		RefreshExpireAt: result.Session.RefreshExpireAt,
		User:            result.User,
	})
}

type mfaVerifyRequest struct {
	ChallengeID string `json:"challenge_id" binding:"required"`
	Code        string `json:"code"`
	BackupCode  string `json:"backup_code"`
}

// VerifyMFA completes a pending MFA challenge
// POST /api/auth/mfa/verify
func (h *AuthHandler) VerifyMFA(c *gin.Context) {
	var req mfaVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Code == "" && req.BackupCode == "" {
		response.BadRequest(c, "code or backup_code is required")
		return
	}

	result, err := h.authService.CompleteMFA(req.ChallengeID, req.Code, req.BackupCode)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	response.Success(c, loginResponse{
		AccessToken:     result.Session.AccessToken,
		AccessExpireAt:  result.Session.AccessExpireAt,
		RefreshToken:    result.Session.RefreshToken,
		RefreshExpireAt: result.Session.RefreshExpireAt,
		User:            result.User,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh rotates a refresh token and returns a fresh token pair
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	device := services.NewDeviceMeta(c.Request.UserAgent(), c.ClientIP(), c.GetHeader("X-Device-Fingerprint"))
	tokens, err := h.authService.Refresh(req.RefreshToken, device)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	response.Success(c, loginResponse{
		AccessToken:     tokens.AccessToken,
		AccessExpireAt:  tokens.AccessExpireAt,
		RefreshToken:    tokens.RefreshToken,
		RefreshExpireAt: tokens.RefreshExpireAt,
	})
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the presented refresh token
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req logoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.authService.Logout(req.RefreshToken); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "logged out"})
}

// LogoutAll revokes every session of the authenticated user
// POST /api/auth/logout-all
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.authService.LogoutAll(userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "all sessions revoked"})
}

// GetCurrentUser returns the current logged-in user
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.Identify(middleware.GetUserID(c))
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.Success(c, user)
}

// GetAuthConfig returns authentication configuration
// GET /api/auth/config
func (h *AuthHandler) GetAuthConfig(c *gin.Context) {
	response.Success(c, gin.H{
		"ldap_enabled": h.authService.IsLDAPEnabled(),
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword issues a password reset token. The response is the same
// whether or not the email is registered.
// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.resetService.RequestReset(req.Email, c.ClientIP()); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "if the email is registered, a reset link has been sent"})
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ResetPassword redeems a reset token
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.resetService.ResetPassword(req.Token, req.NewPassword); err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "password has been reset"})
}

// ChangePassword updates the authenticated user's password
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		services.ChangePasswordRequest
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	currentHash := ""
	if req.RefreshToken != "" {
		currentHash = services.HashTokenSecret(req.RefreshToken)
	}

	userID := middleware.GetUserID(c)
	if err := h.userService.ChangePassword(userID, &req.ChangePasswordRequest, currentHash); err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "password changed"})
}

// writeAuthError maps auth domain errors to HTTP responses without
// leaking which part of the check failed.
func writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Unauthorized(c, "invalid email or password")
	case errors.Is(err, services.ErrEmailNotVerified):
		response.Forbidden(c, "email address not verified")
	case errors.Is(err, services.ErrAccountNotActive):
		response.Forbidden(c, "account is not active")
	case errors.Is(err, services.ErrInvalidOrExpiredToken):
		response.Unauthorized(c, "invalid or expired token")
	case errors.Is(err, services.ErrSecurityViolation):
		response.Unauthorized(c, "session revoked for security reasons, please log in again")
	case errors.Is(err, services.ErrMFAInvalidCode):
		response.Unauthorized(c, "invalid verification code")
	case errors.Is(err, services.ErrMFALockedOut):
		response.Forbidden(c, "too many failed attempts, try again later")
	case errors.Is(err, services.ErrUserNotFound):
		response.NotFound(c, "user not found")
	default:
		response.Error(c, err)
	}
}
