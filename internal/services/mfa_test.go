package services

import (
	"errors"
	"testing"
	"time"

	"github.com/codemule/adminbase/backend/internal/models"
)

func newMFAFixture(t *testing.T, maxAttempts int) (*MFAService, *ChallengeStore, *models.User) {
	t.Helper()

	db := newTestDB(t)
	store := NewChallengeStore(5 * time.Minute)
	t.Cleanup(store.Stop)

	svc := NewMFAService(db, store, MFAConfig{
		MaxAttempts: maxAttempts,
		Lockout:     15 * time.Minute,
		Issuer:      "AdminBase",
	})

	user := createTestUser(t, db, "mfa@example.com", "password123")
	db.Model(user).Updates(map[string]interface{}{"mfa_enabled": true, "mfa_secret": rfc6238Secret})
	user.MFAEnabled = true
	user.MFASecret = rfc6238Secret
	return svc, store, user
}

func TestMFAService_ChallengeRoundTrip(t *testing.T) {
	svc, _, user := newMFAFixture(t, 5)

	challengeID, err := svc.CreateChallenge(user, true, testDeviceMeta())
	if err != nil {
		t.Fatalf("CreateChallenge() error = %v", err)
	}

	code, _ := totpCodeAt(rfc6238Secret, time.Now())
	challenge, remaining, err := svc.VerifyChallenge(challengeID, code, "")
	if err != nil {
		t.Fatalf("VerifyChallenge() error = %v", err)
	}
	if challenge.UserID != user.ID {
		t.Errorf("challenge UserID = %d, expected %d", challenge.UserID, user.ID)
	}
	if !challenge.RememberMe {
		t.Error("challenge lost the remember-me flag")
	}
	if remaining != -1 {
		t.Errorf("remaining = %d, expected -1 when no backup code used", remaining)
	}

	// Single use: the same challenge cannot be verified twice.
	if _, _, err := svc.VerifyChallenge(challengeID, code, ""); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Errorf("second VerifyChallenge() error = %v, expected ErrInvalidOrExpiredToken", err)
	}
}

func TestMFAService_WrongCodeKeepsChallengeAlive(t *testing.T) {
	svc, _, user := newMFAFixture(t, 5)

	challengeID, _ := svc.CreateChallenge(user, false, testDeviceMeta())

	if _, _, err := svc.VerifyChallenge(challengeID, "000000", ""); !errors.Is(err, ErrMFAInvalidCode) {
		t.Fatalf("VerifyChallenge() with wrong code error = %v, expected ErrMFAInvalidCode", err)
	}

	// A failed attempt must not consume the challenge.
	code, _ := totpCodeAt(rfc6238Secret, time.Now())
	if _, _, err := svc.VerifyChallenge(challengeID, code, ""); err != nil {
		t.Errorf("VerifyChallenge() after one failure error = %v", err)
	}
}

func TestMFAService_LockoutAfterMaxAttempts(t *testing.T) {
	svc, store, user := newMFAFixture(t, 3)

	challengeID, _ := svc.CreateChallenge(user, false, testDeviceMeta())

	for i := 0; i < 2; i++ {
		if _, _, err := svc.VerifyChallenge(challengeID, "000000", ""); !errors.Is(err, ErrMFAInvalidCode) {
			t.Fatalf("attempt %d error = %v, expected ErrMFAInvalidCode", i+1, err)
		}
	}

	// Third failure crosses the limit.
	if _, _, err := svc.VerifyChallenge(challengeID, "000000", ""); !errors.Is(err, ErrMFALockedOut) {
		t.Fatalf("third failure error = %v, expected ErrMFALockedOut", err)
	}
	if !store.IsLockedOut(user.ID) {
		t.Error("store does not report the user locked out")
	}

	// Even the correct code is rejected during lockout.
	code, _ := totpCodeAt(rfc6238Secret, time.Now())
	if _, _, err := svc.VerifyChallenge(challengeID, code, ""); !errors.Is(err, ErrMFALockedOut) {
		t.Errorf("correct code during lockout error = %v, expected ErrMFALockedOut", err)
	}

	// New challenges are refused too.
	if _, err := svc.CreateChallenge(user, false, testDeviceMeta()); !errors.Is(err, ErrMFALockedOut) {
		t.Errorf("CreateChallenge() during lockout error = %v, expected ErrMFALockedOut", err)
	}
}

func TestMFAService_LockoutWindowElapses(t *testing.T) {
	db := newTestDB(t)
	store := NewChallengeStore(5 * time.Minute)
	t.Cleanup(store.Stop)

	svc := NewMFAService(db, store, MFAConfig{
		MaxAttempts: 3,
		Lockout:     40 * time.Millisecond,
		Issuer:      "AdminBase",
	})
	user := createTestUser(t, db, "mfa-lockout@example.com", "password123")
	db.Model(user).Updates(map[string]interface{}{"mfa_enabled": true, "mfa_secret": rfc6238Secret})

	challengeID, _ := svc.CreateChallenge(user, false, testDeviceMeta())
	for i := 0; i < 3; i++ {
		svc.VerifyChallenge(challengeID, "000000", "")
	}
	if !store.IsLockedOut(user.ID) {
		t.Fatal("user not locked out after max failures")
	}

	time.Sleep(60 * time.Millisecond)

	// Once the window has passed, the correct code goes through and resets
	// the failure counter.
	code, _ := totpCodeAt(rfc6238Secret, time.Now())
	if _, _, err := svc.VerifyChallenge(challengeID, code, ""); err != nil {
		t.Fatalf("VerifyChallenge() after lockout elapsed error = %v", err)
	}

	challengeID2, _ := svc.CreateChallenge(user, false, testDeviceMeta())
	if _, _, err := svc.VerifyChallenge(challengeID2, "000000", ""); !errors.Is(err, ErrMFAInvalidCode) {
		t.Errorf("first failure after reset error = %v, expected ErrMFAInvalidCode", err)
	}
}

func TestMFAService_BackupCodeSingleUse(t *testing.T) {
	svc, _, user := newMFAFixture(t, 5)

	codes, err := svc.RegenerateBackupCodes(user.ID)
	if err != nil {
		t.Fatalf("RegenerateBackupCodes() error = %v", err)
	}
	if len(codes) != backupCodeCount {
		t.Fatalf("got %d backup codes, expected %d", len(codes), backupCodeCount)
	}

	challengeID, _ := svc.CreateChallenge(user, false, testDeviceMeta())
	_, remaining, err := svc.VerifyChallenge(challengeID, "", codes[0])
	if err != nil {
		t.Fatalf("VerifyChallenge() with backup code error = %v", err)
	}
	if remaining != backupCodeCount-1 {
		t.Errorf("remaining = %d, expected %d", remaining, backupCodeCount-1)
	}

	// The spent code is rejected on a fresh challenge.
	challengeID2, _ := svc.CreateChallenge(user, false, testDeviceMeta())
	if _, _, err := svc.VerifyChallenge(challengeID2, "", codes[0]); !errors.Is(err, ErrMFAInvalidCode) {
		t.Errorf("reused backup code error = %v, expected ErrMFAInvalidCode", err)
	}
}

func TestMFAService_EnrollmentFlow(t *testing.T) {
	db := newTestDB(t)
	store := NewChallengeStore(5 * time.Minute)
	t.Cleanup(store.Stop)
	svc := NewMFAService(db, store, MFAConfig{})
	user := createTestUser(t, db, "enroll@example.com", "password123")

	secret, uri, err := svc.BeginTOTPEnrollment(user)
	if err != nil {
		t.Fatalf("BeginTOTPEnrollment() error = %v", err)
	}
	if uri == "" {
		t.Error("empty provisioning URI")
	}

	// Enrollment must not persist anything before confirmation.
	var check models.User
	db.First(&check, user.ID)
	if check.MFAEnabled || check.MFASecret != "" {
		t.Fatal("enrollment persisted state before confirmation")
	}

	// Wrong first code is rejected.
	if _, err := svc.ConfirmTOTPEnrollment(user.ID, secret, "000000"); !errors.Is(err, ErrMFAInvalidCode) {
		t.Fatalf("ConfirmTOTPEnrollment() with wrong code error = %v, expected ErrMFAInvalidCode", err)
	}

	code, _ := totpCodeAt(secret, time.Now())
	backupCodes, err := svc.ConfirmTOTPEnrollment(user.ID, secret, code)
	if err != nil {
		t.Fatalf("ConfirmTOTPEnrollment() error = %v", err)
	}
	if len(backupCodes) != backupCodeCount {
		t.Errorf("got %d backup codes, expected %d", len(backupCodes), backupCodeCount)
	}

	db.First(&check, user.ID)
	if !check.MFAEnabled || check.MFASecret != secret {
		t.Error("confirmation did not enable MFA")
	}

	// Disable wipes secret and codes.
	if err := svc.DisableMFA(user.ID); err != nil {
		t.Fatalf("DisableMFA() error = %v", err)
	}
	db.First(&check, user.ID)
	if check.MFAEnabled || check.MFASecret != "" {
		t.Error("DisableMFA() left MFA state behind")
	}
	var codeCount int64
	db.Model(&models.BackupCode{}).Where("user_id = ?", user.ID).Count(&codeCount)
	if codeCount != 0 {
		t.Errorf("backup codes remaining after disable = %d, expected 0", codeCount)
	}
}

func TestChallengeStore_ExpiryAndConsume(t *testing.T) {
	store := NewChallengeStore(50 * time.Millisecond)
	t.Cleanup(store.Stop)

	store.Put("ch-1", &MFAChallenge{UserID: 1})

	if _, ok := store.Get("ch-1"); !ok {
		t.Fatal("fresh challenge not found")
	}

	if _, ok := store.Consume("ch-1"); !ok {
		t.Fatal("Consume() failed on a live challenge")
	}
	if _, ok := store.Consume("ch-1"); ok {
		t.Error("Consume() succeeded twice for the same challenge")
	}

	store.Put("ch-2", &MFAChallenge{UserID: 2})
	time.Sleep(80 * time.Millisecond)
	if _, ok := store.Get("ch-2"); ok {
		t.Error("expired challenge still retrievable")
	}
}

func TestChallengeStore_FailureCounters(t *testing.T) {
	store := NewChallengeStore(time.Minute)
	t.Cleanup(store.Stop)

	for i := 1; i < 3; i++ {
		failures, locked := store.RecordFailure(7, 3, time.Minute)
		if failures != i || locked {
			t.Fatalf("failure %d: got (%d, %v), expected (%d, false)", i, failures, locked, i)
		}
	}

	if _, locked := store.RecordFailure(7, 3, time.Minute); !locked {
		t.Fatal("third failure did not lock")
	}
	if !store.IsLockedOut(7) {
		t.Error("IsLockedOut() = false after lockout")
	}

	store.ResetFailures(7)
	if store.IsLockedOut(7) {
		t.Error("IsLockedOut() = true after reset")
	}
}
