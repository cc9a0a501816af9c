package session

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/yiviportal/internal/common"
	"github.com/dmitrijs2005/yiviportal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTDecoder_Decode(t *testing.T) {
	d := NewJWTDecoder()
	exp := time.Unix(1_760_000_090, 0)

	claims, err := d.Decode(testutil.MintToken(t, "a@b.com", "maintainer", []string{"acme", "globex"}, exp))

	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, RoleMaintainer, claims.Role)
	assert.Equal(t, []string{"acme", "globex"}, claims.OrganizationSlugs)
	assert.True(t, exp.Equal(claims.ExpiresAt()))
}

func TestJWTDecoder_ExpiredTokenStillDecodes(t *testing.T) {
	claims, err := NewJWTDecoder().Decode(testutil.MintToken(t, "a@b.com", "admin", nil, time.Now().Add(-time.Hour)))

	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestJWTDecoder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not a jwt", token: "not.a.jwt"},
		{name: "two segments", token: "abc.def"},
		{name: "missing exp", token: testutil.MintRaw(t, map[string]any{"email": "a@b.com"})},
		{name: "missing email", token: testutil.MintRaw(t, map[string]any{"exp": time.Now().Add(time.Hour).Unix()})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJWTDecoder().Decode(tt.token)
			require.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}

func TestClaims_ExpiresAtZeroWhenMissing(t *testing.T) {
	assert.True(t, (&Claims{}).ExpiresAt().IsZero())
}
