// Package testutil provides fixtures shared by the client test suites.
package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// TokenClaims is the payload MintToken signs. It mirrors the claims the
// portal backend puts into access tokens.
type TokenClaims struct {
	Email             string   `json:"email,omitempty"`
	Role              string   `json:"role,omitempty"`
	OrganizationSlugs []string `json:"organizationSlugs,omitempty"`
	jwt.RegisteredClaims
}

var signingKey = []byte("test-signing-key")

// MintToken returns an HS256 token for the given identity expiring at exp.
func MintToken(t testing.TB, email, role string, slugs []string, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		Email:             email,
		Role:              role,
		OrganizationSlugs: slugs,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(exp.Add(-5 * time.Minute)),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}).SignedString(signingKey)
	require.NoError(t, err)
	return token
}

// MintRaw signs arbitrary claims, for malformed-payload cases.
func MintRaw(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	require.NoError(t, err)
	return token
}
