package models

import (
	"time"

	"gorm.io/gorm"
)

// Account status values for User.Status.
const (
	UserStatusActive   = "active"
	UserStatusPending  = "pending" // registered, email not verified yet
	UserStatusDisabled = "disabled"
)

// User represents a system user
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string         `gorm:"size:255" json:"-"` // Hashed password, empty for LDAP users
	Name      string         `gorm:"size:100" json:"name"`
	Avatar    string         `gorm:"size:500" json:"avatar"`
	Role      string         `gorm:"size:50;default:user" json:"role"`       // admin, manager, user
	AuthType  string         `gorm:"size:20;default:local" json:"auth_type"` // local, ldap
	Status    string         `gorm:"size:20;default:active;index" json:"status"`
	MFAEnabled bool          `gorm:"default:false" json:"mfa_enabled"`
	MFASecret  string        `gorm:"size:255" json:"-"` // base32 TOTP secret
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool { return u.Status == UserStatusActive }
