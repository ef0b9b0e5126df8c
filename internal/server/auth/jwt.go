// Package auth issues and verifies the HS256 bearer tokens that identify
// the user driving an upload session.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/productkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// AppMetadata is set by the identity provider. InvitedAt is present only
// for users created through an invitation.
type AppMetadata struct {
	InvitedAt *time.Time `json:"invited_at,omitempty"`
}

// UserMetadata is maintained by the user's own account actions.
type UserMetadata struct {
	PasswordSet bool `json:"password_set,omitempty"`
}

// Claims are the registered claims plus the identity provider metadata.
// The user id is the subject.
type Claims struct {
	jwt.RegisteredClaims
	Email        string       `json:"email,omitempty"`
	AppMetadata  AppMetadata  `json:"app_metadata"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

// UserID returns the token subject.
func (c *Claims) UserID() string {
	return c.Subject
}

// RequiresPasswordSetup is true for invited users that have not chosen a
// password yet. Only the explicit invitation marker counts; account age is
// not considered.
func (c *Claims) RequiresPasswordSetup() bool {
	return c.AppMetadata.InvitedAt != nil && !c.UserMetadata.PasswordSet
}

// Sign signs claims with secretKey, setting the expiry from validityDuration.
func Sign(claims Claims, secretKey []byte, validityDuration time.Duration) (string, error) {
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(validityDuration))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	return Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID}}, secretKey, validityDuration)
}

// ParseToken verifies tokenString and returns its claims. An expired token
// yields common.ErrTokenExpired, any other problem common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return "", err
	}
	return claims.UserID(), nil
}
