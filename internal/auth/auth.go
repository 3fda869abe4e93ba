// Package auth implements the OAuth2 password flow (bcrypt passwords, JWT
// bearer tokens) and API key generation.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken is returned when a bearer token fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Manager issues and verifies access tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// New creates a Manager. An empty secret gets replaced with a random one,
// which invalidates outstanding tokens across restarts; set
// ATELIER_AUTH_SECRET for anything longer-lived.
func New(secret string, ttl time.Duration) *Manager {
	if secret == "" {
		buf := make([]byte, 32)
		_, _ = rand.Read(buf)
		secret = hex.EncodeToString(buf)
	}
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// HashPassword returns the bcrypt hash of a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken creates a signed JWT whose subject is the user ID.
func (m *Manager) IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.StandardClaims{
		Subject:   userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(m.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a JWT and returns its subject (the user ID).
func (m *Manager) VerifyToken(tokenStr string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// NewAPIKey generates a fresh API key. The plaintext is shown to the caller
// exactly once; only the hash is persisted.
func NewAPIKey() (plaintext, prefix, hash string) {
	buf := make([]byte, 20)
	_, _ = rand.Read(buf)
	plaintext = "atl_" + hex.EncodeToString(buf)
	prefix = plaintext[:12]
	hash = HashAPIKey(plaintext)
	return plaintext, prefix, hash
}

// HashAPIKey returns the lookup hash of an API key.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
