package services

import (
	"errors"
	"strings"
	"time"

	"github.com/codemule/adminbase/backend/internal/config"
	"github.com/codemule/adminbase/backend/internal/models"
	"github.com/codemule/adminbase/backend/internal/utils"
	"github.com/codemule/adminbase/backend/pkg/logger"
	"gorm.io/gorm"
)

// AuthService drives the login, refresh, MFA completion and logout flows.
// It owns no token state itself; all credential checks and token storage
// are delegated to its collaborators.
type AuthService struct {
	db          *gorm.DB
	tokens      *TokenStore
	mfa         *MFAService
	ldapService *LDAPService
	authCfg     *config.AuthConfig
	jwtCfg      *config.JWTConfig
}

func NewAuthService(db *gorm.DB, tokens *TokenStore, mfa *MFAService, ldapSvc *LDAPService, cfg *config.Config) *AuthService {
	return &AuthService{
		db:          db,
		tokens:      tokens,
		mfa:         mfa,
		ldapService: ldapSvc,
		authCfg:     &cfg.Auth,
		jwtCfg:      &cfg.JWT,
	}
}

type LoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	AuthType   string `json:"auth_type"` // local, ldap
	RememberMe bool   `json:"remember_me"`
}

// LoginResult is either a completed session or a pending MFA challenge,
// never both.
type LoginResult struct {
	MFARequired bool
	ChallengeID string
	Session     *SessionTokens
	User        *models.User
}

// SessionTokens is the issued token pair for a completed login or refresh.
type SessionTokens struct {
	AccessToken     string
	AccessExpireAt  time.Time
	RefreshToken    string
	RefreshExpireAt time.Time
}

// Login authenticates credentials and either issues a session or opens an
// MFA challenge when the account has MFA enabled.
func (s *AuthService) Login(req *LoginRequest, device DeviceMeta) (*LoginResult, error) {
	var user *models.User
	var err error

	authType := req.AuthType
	if authType == "" {
		authType = "local"
	}

	switch authType {
	case "local":
		user, err = s.localAuth(req.Email, req.Password)
	case "ldap":
		user, err = s.ldapAuth(req.Email, req.Password)
	default:
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if user.MFAEnabled {
		challengeID, err := s.mfa.CreateChallenge(user, req.RememberMe, device)
		if err != nil {
			return nil, err
		}
		LogInfo("auth", "login", "MFA challenge opened", AuditEntry{UserID: &user.ID, IP: device.IPAddress}, nil)
		return &LoginResult{MFARequired: true, ChallengeID: challengeID, User: user}, nil
	}

	session, err := s.issueSession(user, req.RememberMe, device)
	if err != nil {
		return nil, err
	}

	s.recordLogin(user, device)
	return &LoginResult{Session: session, User: user}, nil
}

// CompleteMFA closes a pending challenge and issues the session that the
// original login deferred.
func (s *AuthService) CompleteMFA(challengeID, code, backupCode string) (*LoginResult, error) {
	challenge, remaining, err := s.mfa.VerifyChallenge(challengeID, code, backupCode)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, challenge.UserID).Error; err != nil {
		return nil, ErrInvalidOrExpiredToken
	}
	if !user.IsActive() {
		return nil, ErrAccountNotActive
	}

	session, err := s.issueSession(&user, challenge.RememberMe, challenge.Device)
	if err != nil {
		return nil, err
	}

	entry := AuditEntry{UserID: &user.ID, IP: challenge.Device.IPAddress}
	if backupCode != "" {
		LogWarning("auth", "mfa", "Backup code used for login", entry,
			map[string]interface{}{"remaining_codes": remaining})
	} else {
		LogInfo("auth", "mfa", "MFA challenge completed", entry, nil)
	}

	s.recordLogin(&user, challenge.Device)
	return &LoginResult{Session: session, User: &user}, nil
}

// Refresh rotates the presented refresh token and mints a new access token.
// A revoked-but-unexpired token is treated as theft evidence: every session
// the user holds is revoked before the error is returned.
func (s *AuthService) Refresh(refreshToken string, device DeviceMeta) (*SessionTokens, error) {
	if refreshToken == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	result, err := s.tokens.Validate(refreshToken, models.PurposeSession)
	if err != nil {
		return nil, err
	}

	switch result.Status {
	case StatusValid:
	case StatusReused:
		record := result.Token
		LogWarning("auth", "refresh", "Revoked refresh token presented, revoking all sessions",
			AuditEntry{UserID: &record.UserID, IP: device.IPAddress}, nil)
		if err := s.tokens.RevokeAll(record.UserID); err != nil {
			logger.Errorf("[Auth] Failed to revoke sessions for user %d: %v", record.UserID, err)
		}
		return nil, ErrSecurityViolation
	default:
		return nil, ErrInvalidOrExpiredToken
	}

	record := result.Token
	s.tokens.Touch(record.TokenHash)

	var user models.User
	if err := s.db.First(&user, record.UserID).Error; err != nil {
		return nil, ErrInvalidOrExpiredToken
	}
	if !user.IsActive() {
		return nil, ErrAccountNotActive
	}

	ttl := s.authCfg.RefreshTokenTTL(record.RememberMe)
	newSecret, newRecord, err := s.tokens.Rotate(record, device, ttl)
	if err != nil {
		if errors.Is(err, errRotationConflict) {
			// Lost a concurrent rotation; the caller retries with a dead
			// token and the reuse path above takes over.
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, err
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Email, s.jwtCfg.AccessTokenTTL())
	if err != nil {
		return nil, err
	}

	return &SessionTokens{
		AccessToken:     accessToken,
		AccessExpireAt:  time.Now().Add(s.jwtCfg.AccessTokenTTL()),
		RefreshToken:    newSecret,
		RefreshExpireAt: newRecord.ExpiresAt,
	}, nil
}

// Logout revokes the presented refresh token. Unknown or already revoked
// tokens are ignored so logout never fails on the client.
func (s *AuthService) Logout(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	result, err := s.tokens.Validate(refreshToken, models.PurposeSession)
	if err != nil {
		return err
	}
	if result.Status != StatusValid {
		return nil
	}
	return s.tokens.Revoke(result.Token.ID)
}

// LogoutAll revokes every session the user holds.
func (s *AuthService) LogoutAll(userID uint) error {
	return s.tokens.RevokeAll(userID)
}

// Identify resolves the user behind a valid access token's claims.
func (s *AuthService) Identify(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) IsLDAPEnabled() bool {
	return s.ldapService.Enabled()
}

func (s *AuthService) issueSession(user *models.User, rememberMe bool, device DeviceMeta) (*SessionTokens, error) {
	accessTTL := s.jwtCfg.AccessTokenTTL()
	accessToken, err := utils.GenerateAccessToken(user.ID, user.Email, accessTTL)
	if err != nil {
		return nil, err
	}

	refreshTTL := s.authCfg.RefreshTokenTTL(rememberMe)
	refreshSecret, record, err := s.tokens.Issue(user.ID, device, refreshTTL, rememberMe)
	if err != nil {
		return nil, err
	}

	return &SessionTokens{
		AccessToken:     accessToken,
		AccessExpireAt:  time.Now().Add(accessTTL),
		RefreshToken:    refreshSecret,
		RefreshExpireAt: record.ExpiresAt,
	}, nil
}

func (s *AuthService) recordLogin(user *models.User, device DeviceMeta) {
	now := time.Now()
	if err := s.db.Model(user).Update("last_login", now).Error; err != nil {
		logger.Warnf("[Auth] Failed to record last login for user %d: %v", user.ID, err)
	}
	LogInfo("auth", "login", "User logged in",
		AuditEntry{UserID: &user.ID, IP: device.IPAddress, UserAgent: device.Browser}, nil)
}

func (s *AuthService) localAuth(email, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ? AND auth_type = ?", strings.ToLower(strings.TrimSpace(email)), "local").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn a hash comparison so the miss costs the same as a
			// wrong password.
			utils.CheckPassword(password, "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	switch user.Status {
	case models.UserStatusPending:
		return nil, ErrEmailNotVerified
	case models.UserStatusActive:
	default:
		return nil, ErrAccountNotActive
	}

	return &user, nil
}

func (s *AuthService) ldapAuth(username, password string) (*models.User, error) {
	if !s.ldapService.Enabled() {
		return nil, ErrInvalidCredentials
	}

	ldapUser, err := s.ldapService.Authenticate(username, password)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	email := strings.ToLower(ldapUser.Email)
	if email == "" {
		email = strings.ToLower(ldapUser.Username) + "@ldap.local"
	}

	var user models.User
	err = s.db.Where("email = ? AND auth_type = ?", email, "ldap").First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Email:    email,
			Name:     ldapUser.Name,
			Role:     "user",
			AuthType: "ldap",
			Status:   models.UserStatusActive,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if !user.IsActive() {
		return nil, ErrAccountNotActive
	}

	// Keep the local mirror in sync with the directory.
	if user.Name != ldapUser.Name && ldapUser.Name != "" {
		user.Name = ldapUser.Name
		s.db.Save(&user)
	}

	return &user, nil
}
