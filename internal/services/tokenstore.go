package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/codemule/adminbase/backend/internal/models"
	"github.com/codemule/adminbase/backend/pkg/logger"
	"gorm.io/gorm"
)

// ValidationStatus is the outcome of looking up a presented refresh secret.
type ValidationStatus int

const (
	// StatusValid: record found, not revoked, not expired.
	StatusValid ValidationStatus = iota
	// StatusInvalid: no record for this secret.
	StatusInvalid
	// StatusExpired: record found but past its expiry (revoked or not).
	StatusExpired
	// StatusReused: record found, unexpired, but already revoked. A rotated
	// token is being replayed, which is the compromise signal.
	StatusReused
)

// ValidationResult is the closed outcome type for TokenStore.Validate.
// Token is non-nil only for StatusValid and StatusReused.
type ValidationResult struct {
	Status ValidationStatus
	Token  *models.RefreshToken
}

// DeviceMeta is the client descriptor captured on token issuance.
type DeviceMeta struct {
	DeviceInfo  string
	Browser     string
	IPAddress   string
	Location    string
	Fingerprint string
}

// TokenStore is the single source of truth for refresh-token state. All
// mutation of refresh_tokens rows goes through it.
type TokenStore struct {
	db *gorm.DB
}

func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db}
}

// Issue generates an opaque secret, persists its hash with metadata and
// returns the secret together with the stored record. The secret is never
// stored in cleartext.
func (s *TokenStore) Issue(userID uint, meta DeviceMeta, ttl time.Duration, rememberMe bool) (string, *models.RefreshToken, error) {
	secret, hash, err := generateTokenSecret()
	if err != nil {
		return "", nil, err
	}

	record := models.RefreshToken{
		UserID:      userID,
		TokenHash:   hash,
		ExpiresAt:   time.Now().Add(ttl),
		DeviceInfo:  meta.DeviceInfo,
		Browser:     meta.Browser,
		IPAddress:   meta.IPAddress,
		Location:    meta.Location,
		Fingerprint: meta.Fingerprint,
		RememberMe:  rememberMe,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return "", nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return secret, &record, nil
}

// Validate hashes the presented secret and classifies the matching record.
// The purpose filter guarantees reset tokens can never pass as sessions and
// vice versa.
func (s *TokenStore) Validate(secret string, purpose models.TokenPurpose) (*ValidationResult, error) {
	hash := HashTokenSecret(secret)

	var stored models.RefreshToken
	query := s.db.Where("token_hash = ?", hash)
	if purpose == models.PurposePasswordReset {
		query = query.Where("device_info = ?", models.PasswordResetDeviceInfo)
	} else {
		query = query.Where("device_info <> ?", models.PasswordResetDeviceInfo)
	}
	if err := query.First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ValidationResult{Status: StatusInvalid}, nil
		}
		return nil, err
	}

	if time.Now().After(stored.ExpiresAt) {
		return &ValidationResult{Status: StatusExpired}, nil
	}
	if stored.RevokedAt != nil {
		return &ValidationResult{Status: StatusReused, Token: &stored}, nil
	}
	return &ValidationResult{Status: StatusValid, Token: &stored}, nil
}

// errRotationConflict: a concurrent rotation of the same record won the
// conditional update. The caller's secret is dead either way; the replay is
// classified as reuse on its next Validate.
var errRotationConflict = errors.New("refresh token already rotated")

// Rotate revokes the given record and issues its replacement with a fresh
// ttl, inheriting owner, remember-me and device metadata. The revocation is a
// conditional update on revoked_at IS NULL: of two concurrent rotations of
// the same record exactly one wins.
func (s *TokenStore) Rotate(record *models.RefreshToken, meta DeviceMeta, ttl time.Duration) (string, *models.RefreshToken, error) {
	secret, hash, err := generateTokenSecret()
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	replacement := models.RefreshToken{
		UserID:      record.UserID,
		TokenHash:   hash,
		ExpiresAt:   now.Add(ttl),
		DeviceInfo:  record.DeviceInfo,
		Browser:     record.Browser,
		IPAddress:   record.IPAddress,
		Location:    record.Location,
		Fingerprint: record.Fingerprint,
		RememberMe:  record.RememberMe,
	}
	if meta.DeviceInfo != "" {
		replacement.DeviceInfo = meta.DeviceInfo
	}
	if meta.Browser != "" {
		replacement.Browser = meta.Browser
	}
	if meta.IPAddress != "" {
		replacement.IPAddress = meta.IPAddress
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", record.ID).
			Update("revoked_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errRotationConflict
		}
		return tx.Create(&replacement).Error
	})
	if err != nil {
		return "", nil, err
	}

	return secret, &replacement, nil
}

// Revoke marks a single record revoked by ID. Idempotent.
func (s *TokenStore) Revoke(tokenID uint) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", tokenID).
		Update("revoked_at", time.Now()).Error
}

// RevokeOwned revokes a single record after checking ownership.
func (s *TokenStore) RevokeOwned(tokenID, ownerID uint) error {
	res := s.db.Model(&models.RefreshToken{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", tokenID, ownerID).
		Update("revoked_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// RevokeAll revokes every currently-valid token of the user, sessions and
// reset tokens alike. Used for "log out everywhere" and as the mandatory
// response to detected reuse. Idempotent.
func (s *TokenStore) RevokeAll(userID uint) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", time.Now()).Error
}

// RevokeAllExcept revokes every valid session of the user except the one with
// the given hash. Password-reset tokens are left alone.
func (s *TokenStore) RevokeAllExcept(userID uint, exceptHash string) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL AND token_hash <> ? AND device_info <> ?",
			userID, exceptHash, models.PasswordResetDeviceInfo).
		Update("revoked_at", time.Now()).Error
}

// Touch updates last_used_at for the record with the given hash. Best-effort:
// failures are logged, never propagated.
func (s *TokenStore) Touch(hash string) {
	now := time.Now()
	if err := s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", hash).
		Update("last_used_at", now).Error; err != nil {
		logger.Warn().Err(err).Msg("failed to update refresh token last_used_at")
	}
}

// ListValidSessions returns the user's currently-valid login sessions,
// excluding password-reset rows.
func (s *TokenStore) ListValidSessions(userID uint) ([]models.RefreshToken, error) {
	var tokens []models.RefreshToken
	err := s.db.
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ? AND device_info <> ?",
			userID, time.Now(), models.PasswordResetDeviceInfo).
		Order("created_at DESC").
		Find(&tokens).Error
	return tokens, err
}

// DeleteExpired permanently removes rows whose expiry has passed, revoked or
// not. Revoked-but-unexpired rows are kept: they are what makes reuse
// detectable.
func (s *TokenStore) DeleteExpired() (int64, error) {
	res := s.db.Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

// HashTokenSecret derives the storage hash for an opaque token secret.
func HashTokenSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func generateTokenSecret() (secret string, hash string, err error) {
	raw := make([]byte, 32)
	if _, err = rand.Read(raw); err != nil {
		return "", "", err
	}
	secret = hex.EncodeToString(raw)
	return secret, HashTokenSecret(secret), nil
}
