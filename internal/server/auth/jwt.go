// Package auth mints and verifies the signed session tokens handed out when
// a login token is redeemed.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/bluelink/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard registered claims plus the directory account
// the session authenticates as.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// GenerateToken signs a session token for the given account, valid for
// validityDuration from now.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies a session token and returns the account it was
// issued for. Expired sessions map to common.ErrSessionExpired, every other
// verification failure to common.ErrInvalidSessionToken.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrSessionExpired
		}
		return "", common.ErrInvalidSessionToken
	}

	if !token.Valid {
		return "", common.ErrInvalidSessionToken
	}

	return claims.UserID, nil
}
