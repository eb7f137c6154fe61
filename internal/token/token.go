// Package token issues and verifies the signed, purpose-scoped tokens
// embedded in verification, password-reset, and magic-link emails.
//
// Tokens are stateless: nothing is persisted and nothing is revoked, so a
// token remains valid for repeated use until its purpose-specific lifetime
// runs out. Expiry is the only terminal state the service enforces.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose binds a token to exactly one auth workflow. A token issued for
// one purpose must never satisfy a check for another.
type Purpose string

const (
	PurposeSignupVerification Purpose = "signup-verification"
	PurposePasswordReset      Purpose = "password-reset"
	PurposeMagicLink          Purpose = "magic-link"
)

// ParsePurpose validates a wire-format purpose string.
func ParsePurpose(s string) (Purpose, error) {
	p := Purpose(s)
	switch p {
	case PurposeSignupVerification, PurposePasswordReset, PurposeMagicLink:
		return p, nil
	}
	return "", fmt.Errorf("unknown token purpose %q", s)
}

// Lifetime returns how long a token issued for this purpose stays valid.
func (p Purpose) Lifetime() time.Duration {
	switch p {
	case PurposeSignupVerification:
		return 24 * time.Hour
	case PurposePasswordReset:
		return time.Hour
	case PurposeMagicLink:
		return 10 * time.Minute
	}
	return 0
}

func (p Purpose) String() string { return string(p) }

var (
	// ErrNoSigningKey means the service was constructed without a secret.
	// Issuance must abort rather than fall back to an unsigned token.
	ErrNoSigningKey = errors.New("token signing key not configured")

	// ErrInvalidToken covers every verification failure: malformed input,
	// bad signature, expiry, and purpose mismatch. Callers show the user a
	// single generic message; the wrapped cause is for server-side logs.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims is the decoded content of a verified token.
type Claims struct {
	Email   string
	Purpose Purpose
}

type claims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Service signs and verifies tokens with a symmetric server-held secret.
// It is stateless and safe for concurrent use.
type Service struct {
	key []byte
	now func() time.Time
}

type Option func(*Service)

// WithClock overrides the wall clock, letting tests cross expiry boundaries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(key []byte, opts ...Option) *Service {
	s := &Service{
		key: key,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue returns a signed, URL-safe token encoding the email and purpose,
// expiring after the purpose's lifetime. Two tokens for the same inputs
// issued at different instants are both independently valid.
func (s *Service) Issue(email string, purpose Purpose) (string, error) {
	if len(s.key) == 0 {
		return "", ErrNoSigningKey
	}
	if email == "" {
		return "", errors.New("issue token: empty email")
	}
	if _, err := ParsePurpose(string(purpose)); err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	now := s.now()
	c := claims{
		Email:   email,
		Purpose: string(purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(purpose.Lifetime())),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry as one step, then checks the decoded
// purpose against expected. The zero Purpose skips the purpose check; every
// call site handling a specific link type must pass its expected purpose.
func (s *Service) Verify(raw string, expected Purpose) (Claims, error) {
	if len(s.key) == 0 {
		return Claims{}, ErrNoSigningKey
	}

	var c claims
	_, err := jwt.ParseWithClaims(raw, &c,
		func(t *jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	p, err := ParsePurpose(c.Purpose)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if expected != "" && p != expected {
		return Claims{}, fmt.Errorf("%w: purpose %q presented where %q expected", ErrInvalidToken, p, expected)
	}
	if c.Email == "" {
		return Claims{}, fmt.Errorf("%w: missing email claim", ErrInvalidToken)
	}

	return Claims{Email: c.Email, Purpose: p}, nil
}
