package utils

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateAccessToken(42, "alice@example.com", 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateAccessToken() returned empty token")
	}

	claims, err := ParseAccessToken(token)
	if err != nil {
		t.Fatalf("ParseAccessToken() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, expected 42", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q, expected %q", claims.Email, "alice@example.com")
	}
}

func TestParseAccessToken_TamperedSignature(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateAccessToken(1, "bob@example.com", 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d parts, expected 3", len(parts))
	}

	// Flip a character in the signature
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := ParseAccessToken(tampered); err == nil {
		t.Error("ParseAccessToken() accepted a tampered signature")
	}
}

func TestParseAccessToken_Expired(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateAccessToken(1, "bob@example.com", -time.Second)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := ParseAccessToken(token); err == nil {
		t.Error("ParseAccessToken() accepted an expired token")
	}
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	SetJWTSecret("secret-one")
	token, err := GenerateAccessToken(1, "bob@example.com", 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	SetJWTSecret("secret-two")
	defer SetJWTSecret("secret-one")

	if _, err := ParseAccessToken(token); err == nil {
		t.Error("ParseAccessToken() accepted a token signed with a different secret")
	}
}
