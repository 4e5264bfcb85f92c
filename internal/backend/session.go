package backend

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session carries the operator's backend token. It is created once on
// login (or from the request's bearer header) and handed explicitly to
// every backend call; nothing reads tokens from ambient state.
type Session struct {
	Token     string
	Subject   string
	ExpiresAt time.Time
}

// NewSession wraps a token. When the token is a JWT its subject and expiry
// are read without verifying the signature; the backend remains the
// authority and rejects forged tokens itself. Opaque tokens are accepted
// as-is with no known expiry.
func NewSession(token string) *Session {
	token = strings.TrimSpace(token)
	s := &Session{Token: token}
	if token == "" {
		return s
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return s
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		s.Subject = sub
	} else if name, ok := claims["username"].(string); ok {
		s.Subject = name
	}
	return s
}

// Valid reports whether the session holds a token that has not expired.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// Key is a stable, non-reversible identifier for cache partitioning.
func (s *Session) Key() string {
	if s == nil {
		return "anonymous"
	}
	sum := sha256.Sum256([]byte(s.Token))
	return hex.EncodeToString(sum[:8])
}
