package services

import (
	"errors"
	"time"

	"github.com/codemule/adminbase/backend/internal/models"
	"github.com/codemule/adminbase/backend/internal/utils"
	"github.com/codemule/adminbase/backend/pkg/logger"
	"gorm.io/gorm"
)

// passwordResetTTL bounds how long a reset link stays usable.
const passwordResetTTL = time.Hour

// PasswordResetService issues and redeems single-use reset tokens. Reset
// tokens live in the refresh token table, tagged so they can never be
// exchanged for an access token.
type PasswordResetService struct {
	db     *gorm.DB
	tokens *TokenStore
	emails *EmailService
}

func NewPasswordResetService(db *gorm.DB, tokens *TokenStore, emails *EmailService) *PasswordResetService {
	return &PasswordResetService{db: db, tokens: tokens, emails: emails}
}

// RequestReset issues a reset token and queues the email. It behaves
// identically whether or not the address belongs to an account, so the
// endpoint cannot be used to probe for registered emails.
func (s *PasswordResetService) RequestReset(email, clientIP string) error {
	var user models.User
	err := s.db.Where("email = ? AND auth_type = ?", email, "local").First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debugf("[PasswordReset] Request for unknown email from %s", clientIP)
			return nil
		}
		return err
	}

	// Only one outstanding reset token per user.
	if err := s.revokeOutstanding(user.ID); err != nil {
		return err
	}

	meta := DeviceMeta{
		DeviceInfo: models.PasswordResetDeviceInfo,
		IPAddress:  clientIP,
	}
	secret, _, err := s.tokens.Issue(user.ID, meta, passwordResetTTL, false)
	if err != nil {
		return err
	}

	task := &EmailTask{
		Kind:  EmailKindPasswordReset,
		To:    user.Email,
		Token: secret,
	}
	if queue := GetTaskQueue(); queue != nil {
		if err := queue.Enqueue(task); err != nil {
			logger.Errorf("[PasswordReset] Failed to enqueue reset email for user %d: %v", user.ID, err)
		}
	}
	return nil
}

// ResetPassword redeems a reset token, replaces the password hash, and
// revokes every session the user holds.
func (s *PasswordResetService) ResetPassword(token, newPassword string) error {
	result, err := s.tokens.Validate(token, models.PurposePasswordReset)
	if err != nil {
		return err
	}
	if result.Status != StatusValid {
		return ErrInvalidOrExpiredToken
	}

	record := result.Token

	var user models.User
	if err := s.db.First(&user, record.UserID).Error; err != nil {
		return ErrInvalidOrExpiredToken
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Consume the token first so a concurrent redeem loses.
		now := time.Now()
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", record.ID).
			Update("revoked_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidOrExpiredToken
		}

		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("password", hashed).Error; err != nil {
			return err
		}

		// A successful reset terminates every existing session.
		return tx.Model(&models.RefreshToken{}).
			Where("user_id = ? AND revoked_at IS NULL", user.ID).
			Update("revoked_at", now).Error
	})
}

func (s *PasswordResetService) revokeOutstanding(userID uint) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND device_info = ? AND revoked_at IS NULL", userID, models.PasswordResetDeviceInfo).
		Update("revoked_at", time.Now()).Error
}
