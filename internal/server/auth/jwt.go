// Package auth mints and verifies the session tokens carried in the
// protocol's control block. Tokens are HS256 JWTs with a user_name claim
// and a fixed validity window.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/rfile/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenValidityDuration is the default session window.
const TokenValidityDuration = 24 * time.Hour

// Claims carries the authenticated user name plus the registered expiry.
type Claims struct {
	jwt.RegisteredClaims
	UserName string `json:"user_name"`
}

// IssueToken mints a signed token for userName expiring after
// validityDuration. Returns the token and its expiry as a unix timestamp.
func IssueToken(userName string, secretKey []byte, validityDuration time.Duration) (string, int64, error) {
	expiration := time.Now().Add(validityDuration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
		},
		UserName: userName,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiration.Unix(), nil
}

// ValidateToken verifies signature and claims. Expired-but-genuine tokens
// yield common.ErrTokenExpired; structurally or cryptographically bad tokens
// yield the underlying parse error.
func ValidateToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, err
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// RefreshToken verifies the signature of tokenString (expiry is not
// required: proactive refresh of a stale token is allowed; request-path
// admission rejects expired tokens separately) and mints a new token for the
// same user name with a fresh window.
func RefreshToken(tokenString string, secretKey []byte, validityDuration time.Duration) (string, int64, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", 0, err
	}

	return IssueToken(claims.UserName, secretKey, validityDuration)
}
