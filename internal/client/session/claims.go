package session

import (
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/yiviportal/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Role is the portal-wide role of the token subject.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleMaintainer Role = "maintainer"
)

// Claims is the payload of a portal access token.
type Claims struct {
	Email             string   `json:"email"`
	Role              Role     `json:"role"`
	OrganizationSlugs []string `json:"organizationSlugs"`
	jwt.RegisteredClaims
}

// ExpiresAt returns the exp claim, or the zero time when it is missing.
func (c *Claims) ExpiresAt() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}

func (c *Claims) clone() *Claims {
	cp := *c
	cp.OrganizationSlugs = slices.Clone(c.OrganizationSlugs)
	return &cp
}

// TokenDecoder turns a raw bearer token into Claims.
type TokenDecoder interface {
	Decode(token string) (*Claims, error)
}

// JWTDecoder reads the claims of a JWT without verifying its signature.
// The backend verifies every request; the client only needs the payload.
type JWTDecoder struct {
	parser *jwt.Parser
}

func NewJWTDecoder() *JWTDecoder {
	return &JWTDecoder{parser: jwt.NewParser(jwt.WithoutClaimsValidation())}
}

// Decode fails for malformed tokens and for tokens without exp or email.
// An expired token decodes fine; expiry is the Store's concern.
func (d *JWTDecoder) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := d.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if claims.RegisteredClaims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp", common.ErrInvalidToken)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email", common.ErrInvalidToken)
	}
	return claims, nil
}
