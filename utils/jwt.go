package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is what the session cookie carries. The session id is the
// JWT id; the server-side row decides whether it is still live.
type SessionClaims struct {
	Kind   string `json:"kind"`
	UserID uint   `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs a session token that expires at expiresAt.
func GenerateToken(sessionID, kind string, userID uint, secret string, issuedAt, expiresAt time.Time) (string, error) {
	claims := &SessionClaims{
		Kind:   kind,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies signature, algorithm and expiry.
func ParseToken(tokenStr, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ID == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}
