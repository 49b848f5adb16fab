package services

import (
	"testing"
	"time"

	"github.com/codemule/adminbase/backend/internal/models"
)

func TestTokenCleanupService_RunNow(t *testing.T) {
	db := newTestDB(t)
	tokens := NewTokenStore(db)
	user := createTestUser(t, db, "cleanup@example.com", "password123")

	_, keep, _ := tokens.Issue(user.ID, testDeviceMeta(), time.Hour, false)
	_, drop, _ := tokens.Issue(user.ID, testDeviceMeta(), time.Hour, false)
	expireToken(t, db, drop.ID)
	// Expired reset tokens are swept like any other row.
	_, resetDrop, _ := tokens.Issue(user.ID, DeviceMeta{DeviceInfo: models.PasswordResetDeviceInfo}, time.Hour, false)
	expireToken(t, db, resetDrop.ID)

	svc := NewTokenCleanupService(db, time.Hour)
	deleted, err := svc.RunNow()
	if err != nil {
		t.Fatalf("RunNow() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, expected 2", deleted)
	}

	var ids []uint
	db.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Pluck("id", &ids)
	if len(ids) != 1 || ids[0] != keep.ID {
		t.Errorf("surviving rows = %v, expected only %d", ids, keep.ID)
	}
}

func TestTokenCleanupService_SchedulerStartStop(t *testing.T) {
	db := newTestDB(t)
	svc := NewTokenCleanupService(db, time.Hour)

	svc.StartScheduler()
	svc.StopScheduler()
	// Stopping twice must be safe.
	svc.StopScheduler()
}
