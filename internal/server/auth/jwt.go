// Package auth implements the token issuer and the password hasher.
//
// Access and refresh tokens are HS256 JWTs signed with two distinct secrets.
// Verification is a pure function of token + secret + current time; storage
// equality for refresh tokens is enforced one level up, in the session
// service.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/viewtube/viewtube/internal/common"
	"github.com/viewtube/viewtube/internal/server/models"
)

// AccessClaims is the fixed shape of an access token payload. The token is
// self-contained: signature and expiry are its only validity checks.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// RefreshClaims carries only the user id. A refresh token is additionally
// validated against the value stored on the user record.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

func GenerateAccessToken(u *models.User, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func GenerateRefreshToken(userID string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			// jti makes two rotations within the same second produce
			// distinct token strings; rotation relies on that
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseAccessToken verifies signature and expiry and returns the claims.
// Expired tokens yield common.ErrTokenExpired; anything else that fails
// validation yields common.ErrInvalidToken.
func ParseAccessToken(tokenString string, secretKey []byte) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parseToken(tokenString, secretKey, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefreshToken verifies signature and expiry of a refresh token and
// returns its claims. See ParseAccessToken for the error mapping.
func ParseRefreshToken(tokenString string, secretKey []byte) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parseToken(tokenString, secretKey, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func parseToken(tokenString string, secretKey []byte, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return common.ErrInvalidToken
	}

	return nil
}
