package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/festivo/festivo/internal/models"
)

// DefaultRefreshTokenTTL is the fallback refresh token lifetime.
const DefaultRefreshTokenTTL = 30 * 24 * time.Hour

// SessionConfig describes tunable behaviour for the SessionService.
type SessionConfig struct {
	RefreshTokenTTL time.Duration
	RefreshLength   int
	Clock           func() time.Time
}

// SessionMetadata captures contextual information about the client.
type SessionMetadata struct {
	IPAddress string
	UserAgent string
}

// TokenPair represents an access token and refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

var (
	// ErrSessionNotFound indicates that no session matches the provided token.
	ErrSessionNotFound = errors.New("session: not found")
	// ErrSessionRevoked marks a session that has been revoked.
	ErrSessionRevoked = errors.New("session: revoked")
	// ErrSessionExpired signals that a refresh token has reached its expiry.
	ErrSessionExpired = errors.New("session: expired")
	// ErrSessionInvalidToken is returned when the supplied refresh token is malformed.
	ErrSessionInvalidToken = errors.New("session: invalid token")
)

// SessionService manages creation, rotation, and revocation of staff sessions.
// Refresh tokens are stored hashed; the raw token exists only in the response
// that issued it.
type SessionService struct {
	db         *gorm.DB
	jwt        *JWTService
	refreshTTL time.Duration
	tokenLen   int
	now        func() time.Time
}

// NewSessionService constructs a session manager backed by the provided database and JWT service.
func NewSessionService(db *gorm.DB, jwtService *JWTService, cfg SessionConfig) (*SessionService, error) {
	if db == nil {
		return nil, errors.New("session service: db is required")
	}
	if jwtService == nil {
		return nil, errors.New("session service: jwt service is required")
	}

	ttl := cfg.RefreshTokenTTL
	if ttl <= 0 {
		ttl = DefaultRefreshTokenTTL
	}

	length := cfg.RefreshLength
	if length <= 0 {
		length = 48
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &SessionService{
		db:         db,
		jwt:        jwtService,
		refreshTTL: ttl,
		tokenLen:   length,
		now:        clock,
	}, nil
}

// CreateSession generates a new session and issues a fresh token pair.
func (s *SessionService) CreateSession(staff *models.StaffUser, meta SessionMetadata) (TokenPair, *models.StaffSession, error) {
	if staff == nil || strings.TrimSpace(staff.ID) == "" {
		return TokenPair{}, nil, errors.New("session service: staff user is required")
	}

	refreshToken, err := generateToken(s.tokenLen)
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("session service: generate refresh token: %w", err)
	}

	now := s.now()

	session := &models.StaffSession{
		StaffUserID:      staff.ID,
		RefreshTokenHash: hashToken(refreshToken),
		ExpiresAt:        now.Add(s.refreshTTL),
		LastUsedAt:       now,
		IPAddress:        strings.TrimSpace(meta.IPAddress),
		UserAgent:        strings.TrimSpace(meta.UserAgent),
	}

	if err := s.db.Create(session).Error; err != nil {
		return TokenPair{}, nil, fmt.Errorf("session service: create session: %w", err)
	}

	accessToken, err := s.jwt.GenerateAccessToken(AccessTokenInput{
		StaffID:   staff.ID,
		SessionID: session.ID,
		Email:     staff.Email,
	})
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("session service: generate access token: %w", err)
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, session, nil
}

// RefreshSession rotates the refresh token and issues a new token pair.
func (s *SessionService) RefreshSession(refreshToken string) (TokenPair, *models.StaffSession, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return TokenPair{}, nil, ErrSessionInvalidToken
	}

	var session models.StaffSession
	err := s.db.Preload("StaffUser").Where("refresh_token_hash = ?", hashToken(refreshToken)).First(&session).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return TokenPair{}, nil, ErrSessionNotFound
	case err != nil:
		return TokenPair{}, nil, fmt.Errorf("session service: lookup session: %w", err)
	}

	now := s.now()
	if session.RevokedAt != nil {
		return TokenPair{}, nil, ErrSessionRevoked
	}
	if !now.Before(session.ExpiresAt) {
		return TokenPair{}, nil, ErrSessionExpired
	}

	newToken, err := generateToken(s.tokenLen)
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("session service: rotate refresh token: %w", err)
	}

	session.RefreshTokenHash = hashToken(newToken)
	session.ExpiresAt = now.Add(s.refreshTTL)
	session.LastUsedAt = now

	if err := s.db.Save(&session).Error; err != nil {
		return TokenPair{}, nil, fmt.Errorf("session service: persist rotation: %w", err)
	}

	email := ""
	if session.StaffUser != nil {
		email = session.StaffUser.Email
	}

	accessToken, err := s.jwt.GenerateAccessToken(AccessTokenInput{
		StaffID:   session.StaffUserID,
		SessionID: session.ID,
		Email:     email,
	})
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("session service: generate access token: %w", err)
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: newToken}, &session, nil
}

// RevokeSession marks the session matching the refresh token as revoked.
func (s *SessionService) RevokeSession(refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return ErrSessionInvalidToken
	}

	now := s.now()
	res := s.db.Model(&models.StaffSession{}).
		Where("refresh_token_hash = ? AND revoked_at IS NULL", hashToken(refreshToken)).
		Update("revoked_at", now)
	if res.Error != nil {
		return fmt.Errorf("session service: revoke session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// PurgeExpired deletes sessions that expired or were revoked before the cutoff.
// It returns the number of rows removed.
func (s *SessionService) PurgeExpired() (int64, error) {
	now := s.now()
	res := s.db.Where("expires_at < ? OR revoked_at IS NOT NULL", now).Delete(&models.StaffSession{})
	if res.Error != nil {
		return 0, fmt.Errorf("session service: purge expired: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func generateToken(length int) (string, error) {
	if length <= 0 {
		length = 48
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
