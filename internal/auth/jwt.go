// Package auth provides JWT issuance/verification, bcrypt password
// handling, and the admin_users account service.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL keeps sessions alive for a week to avoid frequent re-login.
const tokenTTL = 7 * 24 * time.Hour

// Claims is the verified identity carried on authenticated requests.
type Claims struct {
	UserID   string
	Username string
}

// JWT signs and verifies HS256 tokens.
type JWT struct {
	secret []byte
}

// NewJWT constructs a signer/verifier around the shared secret.
func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret)}
}

// Sign issues a token for the given account.
func (j *JWT) Sign(userID, username string) (string, error) {
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(j.secret)
}

// Verify parses and validates a token, returning its claims.
func (j *JWT) Verify(tokenStr string) (Claims, error) {
	t, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	})
	if err != nil || !t.Valid {
		return Claims{}, errors.New("invalid token")
	}
	mc, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid claims")
	}
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return Claims{}, errors.New("missing sub")
	}
	username, _ := mc["username"].(string)
	return Claims{UserID: sub, Username: username}, nil
}
