package models

import "time"

// PasswordResetDeviceInfo is the reserved DeviceInfo value marking a row as a
// password-reset token rather than a login session. It is a storage encoding
// detail; code outside this package should use TokenPurpose.
const PasswordResetDeviceInfo = "PASSWORD_RESET"

// TokenPurpose distinguishes login sessions from password-reset tokens that
// share the refresh_tokens table.
type TokenPurpose string

const (
	PurposeSession       TokenPurpose = "session"
	PurposePasswordReset TokenPurpose = "password_reset"
)

// RefreshToken is a persisted refresh-token record. Only the sha256 hash of
// the opaque secret is stored; the secret itself never touches the database.
type RefreshToken struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	TokenHash   string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt   time.Time  `gorm:"index;not null" json:"expires_at"`
	RevokedAt   *time.Time `gorm:"index" json:"revoked_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	DeviceInfo  string     `gorm:"size:500" json:"device_info,omitempty"`
	Browser     string     `gorm:"size:100" json:"browser,omitempty"`
	IPAddress   string     `gorm:"size:64" json:"ip_address,omitempty"`
	Location    string     `gorm:"size:200" json:"location,omitempty"`
	RememberMe  bool       `gorm:"default:false" json:"remember_me"`
	Fingerprint string     `gorm:"size:128" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

// Purpose reports whether the row is a login session or a password-reset token.
func (t *RefreshToken) Purpose() TokenPurpose {
	if t.DeviceInfo == PasswordResetDeviceInfo {
		return PurposePasswordReset
	}
	return PurposeSession
}

// Valid reports liveness: not revoked and not expired at the given instant.
func (t *RefreshToken) Valid(now time.Time) bool {
	return t.RevokedAt == nil && t.ExpiresAt.After(now)
}
