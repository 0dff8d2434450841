package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/models"
)

// SessionClaims are the signed contents of a session token
type SessionClaims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Session is a freshly issued token
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionService mints and parses HS256 session tokens
type SessionService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewSessionService creates a session service from the loaded configuration
func NewSessionService(cfg *config.Config) (*SessionService, error) {
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret is not configured")
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionService{secret: []byte(cfg.SessionSecret), issuer: cfg.SessionIssuer, ttl: ttl}, nil
}

// Issue signs a token naming the user as subject
func (s *SessionService) Issue(user *models.User) (*Session, error) {
	issued := now()
	expires := issued.Add(s.ttl)
	claims := SessionClaims{
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{config.SessionAudience},
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expires}, nil
}

// Parse verifies a token and returns its claims
func (s *SessionService) Parse(token string) (*SessionClaims, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(config.SessionAudience),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}
	return &claims, nil
}

// TTL is how long an issued session stays valid
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}
