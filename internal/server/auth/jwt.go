// Package auth issues and parses the signed session tokens handed to a
// browser after a fully verified login (password + TOTP).
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/secblog/internal/common"
	"github.com/dmitrijs2005/secblog/internal/server/access"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the authenticated principal: the user ID plus the role the
// Access Gate checks on every request.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
	Role   access.Role
}

func GenerateToken(userID string, role access.Role, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
		Role:   role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry and returns the claims.
// Expired tokens map to common.ErrTokenExpired, everything else invalid to
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if _, err := access.ParseRole(string(claims.Role)); err != nil {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
