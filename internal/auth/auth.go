// Package auth implements the till's single-operator login gate.
//
// Credentials sit behind CredentialVerifier so the static shared pair can be
// swapped for a real identity provider without touching handlers. Sessions
// are stateless signed tokens carried in a cookie and validated once at the
// HTTP boundary.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrBadCredentials = errors.New("bad credentials")
	ErrInvalidSession = errors.New("invalid session")
)

// CredentialVerifier checks a submitted credential pair.
type CredentialVerifier interface {
	Verify(user, password string) error
}

// StaticCredentials verifies against the single shared operator credential.
type StaticCredentials struct {
	User     string
	Password string
}

func (c StaticCredentials) Verify(user, password string) error {
	if user != c.User || password != c.Password {
		return ErrBadCredentials
	}
	return nil
}

// SessionManager mints and validates the signed session tokens stored in the
// session cookie.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed token for the given operator.
func (m *SessionManager) Issue(user string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns the operator it was issued to.
// Expired, malformed or foreign-signed tokens fail with ErrInvalidSession.
func (m *SessionManager) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidSession
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}
