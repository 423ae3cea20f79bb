// Package token issues and validates the signed credentials used by the HTTP
// boundary. A token is an opaque HS256 JWT carrying the user id and an expiry.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime of issued tokens.
const DefaultTTL = time.Hour

// ErrInvalidToken is returned when a token cannot be parsed, is expired, or
// carries an unexpected signature method.
var ErrInvalidToken = errors.New("invalid token")

// Issue signs a token for the given user id with the given secret.
func Issue(userID int64, secret []byte, ttl time.Duration) (string, error) {
	const op = "token.Issue"

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%s: failed to sign token: %w", op, err)
	}

	return signed, nil
}

// Validate parses and verifies a token and returns the user id it carries.
func Validate(tokenString string, secret []byte) (int64, error) {
	const op = "token.Validate"

	claims := new(jwt.RegisteredClaims)

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return userID, nil
}
