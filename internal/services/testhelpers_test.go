package services

import (
	"testing"
	"time"

	"github.com/codemule/adminbase/backend/internal/models"
	"github.com/codemule/adminbase/backend/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.RefreshToken{},
		&models.BackupCode{},
		&models.SystemConfig{},
		&models.SystemLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// createTestUser inserts an active local user and returns it.
func createTestUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: hash,
		Name:     "Test User",
		Role:     "user",
		AuthType: "local",
		Status:   models.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// testDeviceMeta is a fixed device fingerprint for token tests.
func testDeviceMeta() DeviceMeta {
	return DeviceMeta{
		DeviceInfo: "Mozilla/5.0 (X11; Linux x86_64)",
		Browser:    "Firefox",
		IPAddress:  "203.0.113.7",
	}
}

// expireToken backdates a stored token so it reads as expired.
func expireToken(t *testing.T, db *gorm.DB, tokenID uint) {
	t.Helper()
	err := db.Model(&models.RefreshToken{}).Where("id = ?", tokenID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error
	if err != nil {
		t.Fatalf("failed to expire token: %v", err)
	}
}
