// Package authtoken issues and verifies the bearer tokens handed out at
// registration and login.
package authtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is used when Config.TTL is not positive.
const DefaultTTL = 30 * 24 * time.Hour

// Config bundles what New needs.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
	Clock  func() time.Time
}

// Claims are the application claims carried in a token.
type Claims struct {
	UserID   string `json:"uid"`
	Email    string `json:"email"`
	Position string `json:"position,omitempty"`
	jwt.RegisteredClaims
}

// Subject identifies who a token is issued to.
type Subject struct {
	UserID   string
	Email    string
	Position string
}

// Service signs and validates HS256 tokens.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// New returns a Service, or an error when no secret is configured.
func New(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, errors.New("authtoken: secret must be provided")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}
	return &Service{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    now,
	}, nil
}

// Issue returns a signed token for the subject.
func (s *Service) Issue(sub Subject) (string, error) {
	if sub.UserID == "" {
		return "", errors.New("authtoken: user id is required")
	}

	now := s.now()
	claims := &Claims{
		UserID:   sub.UserID,
		Email:    sub.Email,
		Position: sub.Position,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sub.UserID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("authtoken: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token and returns its claims.
func (s *Service) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("authtoken: token is empty")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}); err != nil {
		return nil, fmt.Errorf("authtoken: parse token: %w", err)
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, errors.New("authtoken: unexpected issuer")
	}
	if claims.UserID == "" {
		return nil, errors.New("authtoken: token has no user id")
	}
	return &claims, nil
}
