// Package jwtx signs and verifies the HS256 bearer tokens used by the HTTP
// layer. The token subject is the account login and the "auth" claim carries
// the space-delimited authority names.
package jwtx

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("jwtx: invalid token")

// Claims is the decoded token payload.
type Claims struct {
	Auth string `json:"auth"` // space-delimited authority names
	jwt.RegisteredClaims
}

// Authorities splits the auth claim into individual authority names.
func (c Claims) Authorities() []string {
	return strings.Fields(c.Auth)
}

// Signer mints HS256 tokens with a shared secret.
type Signer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Sign returns a signed token for the given login and authorities.
func (s Signer) Sign(login string, authorities []string) (string, error) {
	now := time.Now()
	claims := Claims{
		Auth: strings.Join(authorities, " "),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   login,
			Issuer:    s.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// Verifier validates tokens minted by a Signer with the same secret.
type Verifier struct {
	Secret []byte
	Issuer string
}

// Verify parses and validates a raw token, returning its claims.
func (v Verifier) Verify(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return v.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
