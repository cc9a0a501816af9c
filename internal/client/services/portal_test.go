package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/yiviportal/internal/client/client"
	"github.com/dmitrijs2005/yiviportal/internal/client/models"
	"github.com/dmitrijs2005/yiviportal/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortal_RequiresLogin(t *testing.T) {
	ctx := context.Background()
	fc := &fakeClient{}
	svc := NewPortalService(fc, newStore(t, setupDB(t), nil))

	_, err := svc.ListOrganizations(ctx)
	require.ErrorIs(t, err, common.ErrUnauthorized)
	_, err = svc.GetOrganization(ctx, "acme")
	require.ErrorIs(t, err, common.ErrUnauthorized)
	_, err = svc.RegisterOrganization(ctx, models.RegisterOrganizationRequest{Slug: "acme", Name: models.TranslatedString{En: "Acme"}})
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.ErrorIs(t, svc.AddMaintainer(ctx, "acme", "x@y.com"), common.ErrUnauthorized)

	assert.Empty(t, fc.Calls)
}

func TestPortal_MaintainerScope(t *testing.T) {
	ctx := context.Background()
	fc := &fakeClient{Maintainers: []models.Maintainer{{Email: "a@b.com"}}}
	store := newStore(t, setupDB(t), nil)
	loggedIn(t, store, "a@b.com", "maintainer", "acme")
	svc := NewPortalService(fc, store)

	got, err := svc.ListMaintainers(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.ListMaintainers(ctx, "other")
	require.ErrorIs(t, err, common.ErrForbidden)
	require.ErrorIs(t, svc.AddMaintainer(ctx, "other", "x@y.com"), common.ErrForbidden)
	require.ErrorIs(t, svc.DeleteRelyingParty(ctx, "other", models.EnvironmentDemo, "shop"), common.ErrForbidden)
	_, err = svc.ListRelyingParties(ctx, "other")
	require.ErrorIs(t, err, common.ErrForbidden)

	assert.Equal(t, []string{"ListMaintainers"}, fc.Calls)
}

func TestPortal_AdminMaintainsEverything(t *testing.T) {
	ctx := context.Background()
	fc := &fakeClient{}
	store := newStore(t, setupDB(t), nil)
	loggedIn(t, store, "root@b.com", "admin")
	svc := NewPortalService(fc, store)

	require.NoError(t, svc.AddMaintainer(ctx, "anything", "x@y.com"))
	assert.Equal(t, "x@y.com", fc.LastEmail)
}

func TestPortal_AddMaintainerValidatesEmail(t *testing.T) {
	ctx := context.Background()
	fc := &fakeClient{}
	store := newStore(t, setupDB(t), nil)
	loggedIn(t, store, "a@b.com", "maintainer", "acme")
	svc := NewPortalService(fc, store)

	for _, bad := range []string{"", "nope", "Bob <bob@x.com>"} {
		err := svc.AddMaintainer(ctx, "acme", bad)
		var fe *client.FieldErrors
		require.True(t, errors.As(err, &fe), bad)
		assert.NotEmpty(t, fe.Field("email"))
	}
	assert.Empty(t, fc.Calls)
}

func TestPortal_RemoveMaintainerRefusesSelf(t *testing.T) {
	ctx := context.Background()
	fc := &fakeClient{}
	store := newStore(t, setupDB(t), nil)
	loggedIn(t, store, "a@b.com", "maintainer", "acme")
	svc := NewPortalService(fc, store)

	require.ErrorIs(t, svc.RemoveMaintainer(ctx, "acme", "A@B.com"), common.ErrValidation)
	require.NoError(t, svc.RemoveMaintainer(ctx, "acme", "c@d.com"))
	assert.Equal(t, []string{"DeleteMaintainer"}, fc.Calls)
}

func TestPortal_RegisterOrganizationValidation(t *testing.T) {
	tests := []struct {
		name   string
		req    models.RegisterOrganizationRequest
		fields []string
	}{
		{
			name: "valid",
			req:  models.RegisterOrganizationRequest{Name: models.TranslatedString{En: "Acme"}, Slug: "acme-corp", URL: "https://acme.example"},
		},
		{
			name:   "missing name and bad slug",
			req:    models.RegisterOrganizationRequest{Slug: "Acme Corp"},
			fields: []string{"name.en", "slug"},
		},
		{
			name:   "bad url",
			req:    models.RegisterOrganizationRequest{Name: models.TranslatedString{En: "Acme"}, Slug: "acme", URL: "ftp://acme"},
			fields: []string{"url"},
		},
		{
			name:   "double hyphen",
			req:    models.RegisterOrganizationRequest{Name: models.TranslatedString{En: "Acme"}, Slug: "ac--me"},
			fields: []string{"slug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{}
			store := newStore(t, setupDB(t), nil)
			loggedIn(t, store, "a@b.com", "maintainer")
			svc := NewPortalService(fc, store)

			org, err := svc.RegisterOrganization(context.Background(), tt.req)

			if len(tt.fields) == 0 {
				require.NoError(t, err)
				assert.Equal(t, tt.req.Slug, org.Slug)
				assert.Equal(t, tt.req, fc.LastRegister)
				return
			}
			var fe *client.FieldErrors
			require.True(t, errors.As(err, &fe))
			for _, f := range tt.fields {
				assert.NotEmpty(t, fe.Field(f), f)
			}
			assert.Empty(t, fc.Calls)
		})
	}
}

func TestPortal_CreateRelyingPartyValidation(t *testing.T) {
	ctx := context.Background()
	fc := &fakeClient{}
	store := newStore(t, setupDB(t), nil)
	loggedIn(t, store, "a@b.com", "maintainer", "acme")
	svc := NewPortalService(fc, store)

	err := svc.CreateRelyingParty(ctx, "acme", models.RelyingParty{Slug: "shop", Environment: "moon"})
	var fe *client.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.NotEmpty(t, fe.Field("environment"))
	assert.NotEmpty(t, fe.Field("hostnames"))

	rp := models.RelyingParty{
		Slug:        "shop",
		Environment: models.EnvironmentStaging,
		Hostnames:   []string{"shop.example"},
		Attributes:  []models.RelyingPartyAttribute{{AttributeTag: "pbdf.pbdf.email.email"}},
	}
	require.NoError(t, svc.CreateRelyingParty(ctx, "acme", rp))
	assert.Equal(t, rp, fc.LastRP)
}

func TestPortal_RelyingPartyHostnameSyntax(t *testing.T) {
	ctx := context.Background()
	fc := &fakeClient{}
	store := newStore(t, setupDB(t), nil)
	loggedIn(t, store, "a@b.com", "maintainer", "acme")
	svc := NewPortalService(fc, store)

	base := models.RelyingParty{
		Slug:        "shop",
		Environment: models.EnvironmentDemo,
		Attributes:  []models.RelyingPartyAttribute{{AttributeTag: "pbdf.pbdf.email.email"}},
	}

	for _, h := range []string{"http://shop.example/", "shop example", "shop.example/path", "user@shop.example", "shop.example?x=1", " "} {
		rp := base
		rp.Hostnames = []string{"ok.example", h}
		err := svc.CreateRelyingParty(ctx, "acme", rp)
		var fe *client.FieldErrors
		require.True(t, errors.As(err, &fe), h)
		assert.Len(t, fe.Field("hostnames"), 1, h)
	}
	assert.Empty(t, fc.Calls)

	for _, h := range []string{"shop.example", "localhost:8080", "[::1]:443"} {
		rp := base
		rp.Hostnames = []string{h}
		require.NoError(t, svc.CreateRelyingParty(ctx, "acme", rp), h)
	}
}

func TestPortal_BackendErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	fc := &fakeClient{MutateErr: client.ErrUnavailable, Org: &models.Organization{Slug: "acme"}}
	store := newStore(t, setupDB(t), nil)
	loggedIn(t, store, "a@b.com", "maintainer", "acme")
	svc := NewPortalService(fc, store)

	require.ErrorIs(t, svc.AddMaintainer(ctx, "acme", "x@y.com"), client.ErrUnavailable)

	org, err := svc.GetOrganization(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", org.Slug)
	_, err = svc.GetOrganization(ctx, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}
