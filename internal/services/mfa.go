package services

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/codemule/adminbase/backend/internal/models"
	"github.com/codemule/adminbase/backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const backupCodeCount = 10

// MFAConfig tunes the second-factor verification windows.
type MFAConfig struct {
	MaxAttempts int           // consecutive failures before lockout
	Lockout     time.Duration // lockout window once exceeded
	Issuer      string        // shown in authenticator apps
}

// MFAService issues login challenges and verifies TOTP and backup codes.
// Challenge and lockout state live in the injected ChallengeStore; backup
// codes and TOTP secrets are persisted per user.
type MFAService struct {
	db     *gorm.DB
	store  *ChallengeStore
	config MFAConfig
}

func NewMFAService(db *gorm.DB, store *ChallengeStore, cfg MFAConfig) *MFAService {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = 15 * time.Minute
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "AdminBase"
	}
	return &MFAService{db: db, store: store, config: cfg}
}

// CreateChallenge mints a temp token for a password-verified user whose
// account requires a second factor. Returns ErrMFALockedOut while the user is
// inside a lockout window.
func (s *MFAService) CreateChallenge(user *models.User, rememberMe bool, device DeviceMeta) (string, error) {
	if s.store.IsLockedOut(user.ID) {
		return "", ErrMFALockedOut
	}

	challengeID := uuid.NewString()
	s.store.Put(challengeID, &MFAChallenge{
		UserID:     user.ID,
		Email:      user.Email,
		RememberMe: rememberMe,
		Device:     device,
	})
	return challengeID, nil
}

// VerifyChallenge checks a TOTP code or backup code against a pending
// challenge. On success the challenge is consumed (single use) and the
// failure counter resets. On failure the counter increments; reaching the
// limit locks the user out for the configured window, during which even
// correct codes are rejected.
//
// remainingBackup is meaningful only when a backup code was consumed;
// it is -1 otherwise.
func (s *MFAService) VerifyChallenge(challengeID, code, backupCode string) (*MFAChallenge, int, error) {
	challenge, ok := s.store.Get(challengeID)
	if !ok {
		return nil, -1, ErrInvalidOrExpiredToken
	}

	if s.store.IsLockedOut(challenge.UserID) {
		return nil, -1, ErrMFALockedOut
	}

	var user models.User
	if err := s.db.First(&user, challenge.UserID).Error; err != nil {
		return nil, -1, ErrInvalidOrExpiredToken
	}

	remaining := -1
	verified := false
	switch {
	case code != "":
		verified = VerifyTOTP(user.MFASecret, code, time.Now())
	case backupCode != "":
		var err error
		remaining, err = s.consumeBackupCode(user.ID, backupCode)
		if err == nil {
			verified = true
		}
	}

	if !verified {
		failures, locked := s.store.RecordFailure(challenge.UserID, s.config.MaxAttempts, s.config.Lockout)
		if locked {
			logger.Warn().Uint("user_id", challenge.UserID).Int("failures", failures).
				Msg("mfa lockout triggered")
			return nil, -1, ErrMFALockedOut
		}
		return nil, -1, ErrMFAInvalidCode
	}

	// Single use: drop the challenge only after a successful verification.
	if _, ok := s.store.Consume(challengeID); !ok {
		return nil, -1, ErrInvalidOrExpiredToken
	}
	s.store.ResetFailures(challenge.UserID)

	return challenge, remaining, nil
}

// BeginTOTPEnrollment generates a fresh secret and provisioning URI for the
// user. The secret is not persisted until ConfirmTOTPEnrollment proves the
// user's authenticator accepts it.
func (s *MFAService) BeginTOTPEnrollment(user *models.User) (secret, uri string, err error) {
	secret, err = GenerateTOTPSecret()
	if err != nil {
		return "", "", err
	}
	return secret, TOTPProvisionURI(secret, user.Email, s.config.Issuer), nil
}

// ConfirmTOTPEnrollment verifies the first code and enables MFA, returning a
// fresh set of backup codes to show the user exactly once.
func (s *MFAService) ConfirmTOTPEnrollment(userID uint, secret, code string) ([]string, error) {
	if !VerifyTOTP(secret, code, time.Now()) {
		return nil, ErrMFAInvalidCode
	}

	var codes []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{"mfa_enabled": true, "mfa_secret": secret}).Error; err != nil {
			return err
		}
		var genErr error
		codes, genErr = replaceBackupCodes(tx, userID)
		return genErr
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// DisableMFA turns the second factor off and discards backup codes.
func (s *MFAService) DisableMFA(userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{"mfa_enabled": false, "mfa_secret": ""}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.BackupCode{}).Error
	})
}

// RegenerateBackupCodes replaces the user's pool with a fresh one.
func (s *MFAService) RegenerateBackupCodes(userID uint) ([]string, error) {
	var codes []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var genErr error
		codes, genErr = replaceBackupCodes(tx, userID)
		return genErr
	})
	return codes, err
}

// consumeBackupCode marks a matching unused code as used and returns the
// count still available. The update is conditional on used_at IS NULL so a
// code cannot be spent twice.
func (s *MFAService) consumeBackupCode(userID uint, code string) (int, error) {
	hash := HashTokenSecret(code)
	res := s.db.Model(&models.BackupCode{}).
		Where("user_id = ? AND code_hash = ? AND used_at IS NULL", userID, hash).
		Update("used_at", time.Now())
	if res.Error != nil {
		return -1, res.Error
	}
	if res.RowsAffected == 0 {
		return -1, ErrMFAInvalidCode
	}

	var remaining int64
	if err := s.db.Model(&models.BackupCode{}).
		Where("user_id = ? AND used_at IS NULL", userID).
		Count(&remaining).Error; err != nil {
		return -1, nil
	}
	return int(remaining), nil
}

func replaceBackupCodes(tx *gorm.DB, userID uint) ([]string, error) {
	if err := tx.Where("user_id = ?", userID).Delete(&models.BackupCode{}).Error; err != nil {
		return nil, err
	}

	codes := make([]string, 0, backupCodeCount)
	for i := 0; i < backupCodeCount; i++ {
		code, err := generateBackupCode()
		if err != nil {
			return nil, err
		}
		record := models.BackupCode{UserID: userID, CodeHash: HashTokenSecret(code)}
		if err := tx.Create(&record).Error; err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// generateBackupCode returns an 8-character lowercase hex code.
func generateBackupCode() (string, error) {
	raw := make([]byte, 4)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
