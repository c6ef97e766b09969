// Package auth provides JWT generation, validation, password hashing, and
// HTTP middleware for signed-in users.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims are the JWT claims for a Streamo user. Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

type Service struct {
	secret []byte
	expiry time.Duration
}

func NewService(secret string, expiry time.Duration) *Service {
	if expiry == 0 {
		expiry = 15 * time.Minute
	}
	return &Service{secret: []byte(secret), expiry: expiry}
}

// GenerateToken creates a signed HS256 access token for the given user.
func (s *Service) GenerateToken(userID, email string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("auth: signing secret not configured")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			Issuer:    "streamo",
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses and validates an access token, returning its claims.
func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("auth: invalid token claims")
	}
	return claims, nil
}

// HashPassword returns the bcrypt hash of a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash keeps login timing comparable when the email is unknown:
// the handler runs a bcrypt comparison either way.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("streamo-dummy-password"), bcrypt.DefaultCost)

// CompareDummy burns one bcrypt comparison against a throwaway hash.
func CompareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// WriteError responds with the standard error JSON shape used by auth
// endpoints and middleware.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
