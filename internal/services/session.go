package services

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// SessionInfo is the user-facing view of a login session.
type SessionInfo struct {
	ID         uint       `json:"id"`
	Device     string     `json:"device"`
	Browser    string     `json:"browser"`
	IPAddress  string     `json:"ip_address"`
	Location   string     `json:"location,omitempty"`
	Current    bool       `json:"current"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

// SessionService is a read/terminate view over the token store scoped to
// real login sessions; password-reset tokens never appear here.
type SessionService struct {
	tokens *TokenStore
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{tokens: NewTokenStore(db)}
}

// List returns the user's valid sessions. currentHash is the hash of the
// caller's own refresh token and marks exactly one entry as current.
func (s *SessionService) List(userID uint, currentHash string) ([]SessionInfo, error) {
	records, err := s.tokens.ListValidSessions(userID)
	if err != nil {
		return nil, err
	}

	sessions := make([]SessionInfo, 0, len(records))
	for _, r := range records {
		sessions = append(sessions, SessionInfo{
			ID:         r.ID,
			Device:     summarizeDevice(r.DeviceInfo),
			Browser:    r.Browser,
			IPAddress:  r.IPAddress,
			Location:   r.Location,
			Current:    r.TokenHash == currentHash,
			CreatedAt:  r.CreatedAt,
			LastUsedAt: r.LastUsedAt,
			ExpiresAt:  r.ExpiresAt,
		})
	}
	return sessions, nil
}

// Terminate revokes a single session after checking the caller owns it.
func (s *SessionService) Terminate(sessionID, userID uint) error {
	return s.tokens.RevokeOwned(sessionID, userID)
}

// TerminateOthers revokes every session of the user except the one matching
// currentHash.
func (s *SessionService) TerminateOthers(userID uint, currentHash string) error {
	return s.tokens.RevokeAllExcept(userID, currentHash)
}

// NewDeviceMeta captures request attributes for token records. The raw
// User-Agent goes into DeviceInfo; the browser family is derived once here
// so listings do not reparse it.
func NewDeviceMeta(userAgent, ip, fingerprint string) DeviceMeta {
	return DeviceMeta{
		DeviceInfo:  userAgent,
		Browser:     detectBrowser(userAgent),
		IPAddress:   ip,
		Fingerprint: fingerprint,
	}
}

// summarizeDevice turns a raw User-Agent string into a short human-readable
// platform label. Best effort only.
func summarizeDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case ua == "":
		return "Unknown device"
	case strings.Contains(ua, "iphone"):
		return "iPhone"
	case strings.Contains(ua, "ipad"):
		return "iPad"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "mac os") || strings.Contains(ua, "macintosh"):
		return "macOS"
	case strings.Contains(ua, "linux"):
		return "Linux"
	default:
		return "Unknown device"
	}
}

// detectBrowser extracts the browser family from a User-Agent string,
// captured at login time so session listings stay readable.
func detectBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "edg/"):
		return "Edge"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		return "Opera"
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "safari"):
		return "Safari"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case ua == "":
		return ""
	default:
		return "Other"
	}
}
