package services

import (
	"errors"
	"testing"
	"time"

	"github.com/codemule/adminbase/backend/internal/models"
)

func TestSessionService_ListMarksCurrent(t *testing.T) {
	db := newTestDB(t)
	svc := NewSessionService(db)
	tokens := NewTokenStore(db)
	user := createTestUser(t, db, "sessions@example.com", "password123")

	currentSecret, _, _ := tokens.Issue(user.ID, testDeviceMeta(), time.Hour, false)
	tokens.Issue(user.ID, DeviceMeta{DeviceInfo: "Mozilla/5.0 (iPhone; CPU iPhone OS)", Browser: "Safari"}, time.Hour, false)
	// A reset token must never show up as a session.
	tokens.Issue(user.ID, DeviceMeta{DeviceInfo: models.PasswordResetDeviceInfo}, time.Hour, false)

	sessions, err := svc.List(user.ID, HashTokenSecret(currentSecret))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, expected 2", len(sessions))
	}

	currentCount := 0
	for _, s := range sessions {
		if s.Current {
			currentCount++
		}
	}
	if currentCount != 1 {
		t.Errorf("sessions marked current = %d, expected exactly 1", currentCount)
	}
}

func TestSessionService_TerminateEnforcesOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewSessionService(db)
	tokens := NewTokenStore(db)
	owner := createTestUser(t, db, "own@example.com", "password123")
	attacker := createTestUser(t, db, "atk@example.com", "password123")

	_, record, _ := tokens.Issue(owner.ID, testDeviceMeta(), time.Hour, false)

	if err := svc.Terminate(record.ID, attacker.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Terminate() by non-owner error = %v, expected ErrSessionNotFound", err)
	}
	if err := svc.Terminate(record.ID, owner.ID); err != nil {
		t.Errorf("Terminate() by owner error = %v", err)
	}

	sessions, _ := svc.List(owner.ID, "")
	if len(sessions) != 0 {
		t.Errorf("sessions after terminate = %d, expected 0", len(sessions))
	}
}

func TestSessionService_TerminateOthers(t *testing.T) {
	db := newTestDB(t)
	svc := NewSessionService(db)
	tokens := NewTokenStore(db)
	user := createTestUser(t, db, "others@example.com", "password123")

	keep, _, _ := tokens.Issue(user.ID, testDeviceMeta(), time.Hour, false)
	tokens.Issue(user.ID, testDeviceMeta(), time.Hour, false)
	tokens.Issue(user.ID, testDeviceMeta(), time.Hour, false)

	if err := svc.TerminateOthers(user.ID, HashTokenSecret(keep)); err != nil {
		t.Fatalf("TerminateOthers() error = %v", err)
	}

	sessions, _ := svc.List(user.ID, HashTokenSecret(keep))
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, expected 1", len(sessions))
	}
	if !sessions[0].Current {
		t.Error("surviving session is not the current one")
	}
}

func TestSummarizeDevice(t *testing.T) {
	tests := []struct {
		ua       string
		expected string
	}{
		{"", "Unknown device"},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)", "iPhone"},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", "Windows"},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0)", "macOS"},
		{"Mozilla/5.0 (X11; Linux x86_64)", "Linux"},
		{"curl/8.4.0", "Unknown device"},
	}
	for _, tt := range tests {
		if got := summarizeDevice(tt.ua); got != tt.expected {
			t.Errorf("summarizeDevice(%q) = %q, expected %q", tt.ua, got, tt.expected)
		}
	}
}

func TestDetectBrowser(t *testing.T) {
	tests := []struct {
		ua       string
		expected string
	}{
		{"", ""},
		{"Mozilla/5.0 ... Chrome/120.0 Safari/537.36", "Chrome"},
		{"Mozilla/5.0 ... Chrome/120.0 Safari/537.36 Edg/120.0", "Edge"},
		{"Mozilla/5.0 ... Version/17.0 Safari/605.1.15", "Safari"},
		{"Mozilla/5.0 ... Gecko/20100101 Firefox/121.0", "Firefox"},
		{"curl/8.4.0", "Other"},
	}
	for _, tt := range tests {
		if got := detectBrowser(tt.ua); got != tt.expected {
			t.Errorf("detectBrowser(%q) = %q, expected %q", tt.ua, got, tt.expected)
		}
	}
}
