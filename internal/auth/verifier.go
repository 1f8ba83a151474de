// Package auth implements credential verification, the administrator
// allow-list, and the claim-elevation bootstrap flow.
package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors for the elevation flow. Handlers map these to HTTP
// status codes; authorization failures are never downgraded to not-found.
var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrNotAllowed   = errors.New("email is not on the admin allow-list")
)

// Identity is the decoded result of a verified credential.
type Identity struct {
	UID   string
	Email string
}

// TokenVerifier validates a bearer token and extracts the identity it proves.
type TokenVerifier interface {
	Verify(tokenString string) (*Identity, error)
}

// idClaims are the identity-provider claims carried in a bearer token.
type idClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies HS256 identity tokens.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for the given shared secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token and returns the identity.
// Every failure mode collapses to ErrInvalidToken; callers only need to
// distinguish "unverified" from "verified".
func (v *JWTVerifier) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &idClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*idClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{UID: claims.Subject, Email: claims.Email}, nil
}
