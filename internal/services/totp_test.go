package services

import (
	"strings"
	"testing"
	"time"
)

// rfc6238Secret is the ASCII key "12345678901234567890" from the RFC test
// vectors, base32-encoded.
const rfc6238Secret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestTOTP_RFC6238Vectors(t *testing.T) {
	// The RFC lists 8-digit codes; the last 6 digits are the 6-digit code.
	tests := []struct {
		unix int64
		code string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
		{2000000000, "279037"},
		{20000000000, "353130"},
	}

	for _, tt := range tests {
		at := time.Unix(tt.unix, 0)
		got, err := totpCodeAt(rfc6238Secret, at)
		if err != nil {
			t.Fatalf("totpCodeAt(%d) error = %v", tt.unix, err)
		}
		if got != tt.code {
			t.Errorf("totpCodeAt(%d) = %q, expected %q", tt.unix, got, tt.code)
		}
		if !VerifyTOTP(rfc6238Secret, tt.code, at) {
			t.Errorf("VerifyTOTP rejected RFC vector code %q at %d", tt.code, tt.unix)
		}
	}
}

func TestVerifyTOTP_Skew(t *testing.T) {
	now := time.Unix(1111111111, 0)

	prev, _ := totpCodeAt(rfc6238Secret, now.Add(-30*time.Second))
	next, _ := totpCodeAt(rfc6238Secret, now.Add(30*time.Second))
	far, _ := totpCodeAt(rfc6238Secret, now.Add(90*time.Second))

	if !VerifyTOTP(rfc6238Secret, prev, now) {
		t.Error("code from previous period rejected, expected accepted within skew")
	}
	if !VerifyTOTP(rfc6238Secret, next, now) {
		t.Error("code from next period rejected, expected accepted within skew")
	}
	if VerifyTOTP(rfc6238Secret, far, now) {
		t.Error("code from three periods ahead accepted, expected rejected")
	}
}

func TestVerifyTOTP_MalformedCodes(t *testing.T) {
	now := time.Unix(1111111111, 0)

	for _, code := range []string{"", "12345", "1234567", "abcdef", "12 456"} {
		if VerifyTOTP(rfc6238Secret, code, now) {
			t.Errorf("VerifyTOTP accepted malformed code %q", code)
		}
	}

	// Whitespace around an otherwise valid code is tolerated.
	valid, _ := totpCodeAt(rfc6238Secret, now)
	if !VerifyTOTP(rfc6238Secret, " "+valid+" ", now) {
		t.Error("VerifyTOTP rejected a valid code with surrounding whitespace")
	}
}

func TestVerifyTOTP_BadSecret(t *testing.T) {
	now := time.Now()
	if VerifyTOTP("not!base32", "123456", now) {
		t.Error("VerifyTOTP accepted a code against an undecodable secret")
	}
	if VerifyTOTP("", "123456", now) {
		t.Error("VerifyTOTP accepted a code against an empty secret")
	}
}

func TestGenerateTOTPSecret(t *testing.T) {
	s1, err := GenerateTOTPSecret()
	if err != nil {
		t.Fatalf("GenerateTOTPSecret() error = %v", err)
	}
	s2, err := GenerateTOTPSecret()
	if err != nil {
		t.Fatalf("GenerateTOTPSecret() error = %v", err)
	}
	if s1 == s2 {
		t.Error("two generated secrets are identical")
	}
	if strings.Contains(s1, "=") {
		t.Error("secret contains base32 padding")
	}
}

func TestTOTPProvisionURI(t *testing.T) {
	uri := TOTPProvisionURI("SECRET123", "alice@example.com", "AdminBase")

	if !strings.HasPrefix(uri, "otpauth://totp/") {
		t.Errorf("URI prefix wrong: %s", uri)
	}
	for _, want := range []string{"secret=SECRET123", "issuer=AdminBase", "period=30", "digits=6", "algorithm=SHA1"} {
		if !strings.Contains(uri, want) {
			t.Errorf("URI missing %q: %s", want, uri)
		}
	}
}
