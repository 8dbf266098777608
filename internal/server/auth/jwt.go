// Package auth implements the stateless access-token service: HS256-signed
// JWTs carrying the user id as subject. There is no revocation list —
// revocation happens at the refresh-session layer, and a stolen access
// token stays valid only until its short TTL elapses.
package auth

import (
	"errors"
	"time"

	"github.com/avoropay/finsync/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims embeds the registered claims; the user id travels in Subject.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken issues a signed access token for userID, valid for the given
// duration. The signing key is injected by the caller, never read from a
// package global.
func GenerateToken(userID string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
	})

	return token.SignedString(secretKey)
}

// GetUserIDFromToken verifies the token's signature and expiry and returns
// the embedded user id. Expired tokens yield common.ErrTokenExpired; any
// other verification failure yields common.ErrInvalidToken.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
