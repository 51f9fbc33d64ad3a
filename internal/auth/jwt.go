// Package auth mints and checks the signed links sent by email. A link
// token is an HS256 JWT naming the user, the address it was sent to (sub)
// and the purpose it was issued for, so a token minted for one purpose is
// rejected for any other.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// PurposeEmailVerification marks tokens sent in "verify your email" links.
const PurposeEmailVerification = "email_verification"

// Claims holds the registered claims plus the user id and link purpose.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string
	Purpose string
}

func GenerateToken(userID, email, purpose string, secretKey []byte, issuedAt time.Time, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(validityDuration)),
		},
		UserID:  userID,
		Purpose: purpose,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates tokenString at time now and returns its claims.
// Expired tokens yield common.ErrTokenExpired; every other failure,
// including a purpose mismatch, wraps common.ErrInvalidToken.
func ParseToken(tokenString, purpose string, secretKey []byte, now time.Time) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, common.ErrTokenExpired
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Purpose != purpose || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
