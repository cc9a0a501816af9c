package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/yiviportal/internal/client/client"
	"github.com/dmitrijs2005/yiviportal/internal/client/issuance"
	"github.com/dmitrijs2005/yiviportal/internal/client/models"
	"github.com/dmitrijs2005/yiviportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/yiviportal/internal/client/session"
	"github.com/dmitrijs2005/yiviportal/internal/logging"
	"github.com/dmitrijs2005/yiviportal/internal/testutil"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "portal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newStore(t *testing.T, db *sql.DB, refresher session.Refresher) *session.Store {
	t.Helper()
	if refresher == nil {
		refresher = &fakeClient{RefreshErr: client.ErrUnauthorized}
	}
	return session.NewStore(session.NewJWTDecoder(), metadata.NewSQLiteRepository(db), refresher, logging.Discard())
}

func loggedIn(t *testing.T, store *session.Store, email, role string, slugs ...string) {
	t.Helper()
	store.SetToken(context.Background(), testutil.MintToken(t, email, role, slugs, time.Now().Add(time.Hour)))
	require.True(t, store.IsAuthenticated())
}

// ---- fake client ----

type fakeClient struct {
	PingErr error

	RefreshRet string
	RefreshErr error

	Credentials    []models.Credential
	CredentialsErr error
	EnvInfos       []models.EnvironmentInfo

	Orgs        []models.Organization
	Org         *models.Organization
	RegisterErr error
	Maintainers []models.Maintainer
	RPs         []models.RelyingParty
	MutateErr   error

	Calls []string

	LastRegister models.RegisterOrganizationRequest
	LastEmail    string
	LastRP       models.RelyingParty
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) record(name string) { f.Calls = append(f.Calls, name) }

func (f *fakeClient) Ping(context.Context) error { f.record("Ping"); return f.PingErr }

func (f *fakeClient) RefreshToken(context.Context) (string, error) {
	f.record("RefreshToken")
	return f.RefreshRet, f.RefreshErr
}

func (f *fakeClient) StartSession(context.Context) (*client.SessionStart, error) {
	f.record("StartSession")
	return nil, client.ErrUnavailable
}

func (f *fakeClient) SessionResult(context.Context, string) (string, error) {
	f.record("SessionResult")
	return "", client.ErrUnavailable
}

func (f *fakeClient) ListCredentials(context.Context) ([]models.Credential, error) {
	f.record("ListCredentials")
	return f.Credentials, f.CredentialsErr
}

func (f *fakeClient) ListEnvironments(context.Context) ([]models.EnvironmentInfo, error) {
	f.record("ListEnvironments")
	return f.EnvInfos, nil
}

func (f *fakeClient) ListOrganizations(context.Context) ([]models.Organization, error) {
	f.record("ListOrganizations")
	return f.Orgs, nil
}

func (f *fakeClient) GetOrganization(_ context.Context, slug string) (*models.Organization, error) {
	f.record("GetOrganization")
	if f.Org == nil || f.Org.Slug != slug {
		return nil, client.ErrNotFound
	}
	return f.Org, nil
}

func (f *fakeClient) RegisterOrganization(_ context.Context, req models.RegisterOrganizationRequest) (*models.Organization, error) {
	f.record("RegisterOrganization")
	f.LastRegister = req
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	return &models.Organization{Slug: req.Slug, Name: req.Name}, nil
}

func (f *fakeClient) ListMaintainers(context.Context, string) ([]models.Maintainer, error) {
	f.record("ListMaintainers")
	return f.Maintainers, nil
}

func (f *fakeClient) AddMaintainer(_ context.Context, _ string, email string) error {
	f.record("AddMaintainer")
	f.LastEmail = email
	return f.MutateErr
}

func (f *fakeClient) DeleteMaintainer(_ context.Context, _ string, email string) error {
	f.record("DeleteMaintainer")
	f.LastEmail = email
	return f.MutateErr
}

func (f *fakeClient) ListRelyingParties(context.Context, string) ([]models.RelyingParty, error) {
	f.record("ListRelyingParties")
	return f.RPs, nil
}

func (f *fakeClient) CreateRelyingParty(_ context.Context, _ string, rp models.RelyingParty) error {
	f.record("CreateRelyingParty")
	f.LastRP = rp
	return f.MutateErr
}

func (f *fakeClient) DeleteRelyingParty(context.Context, string, models.Environment, string) error {
	f.record("DeleteRelyingParty")
	return f.MutateErr
}

// ---- fake widget & cookies ----

type fakeWidget struct {
	Token   string
	Err     error
	LastCfg issuance.SessionConfig
}

func (w *fakeWidget) Start(_ context.Context, cfg issuance.SessionConfig) (string, error) {
	w.LastCfg = cfg
	return w.Token, w.Err
}

type fakeCookies struct {
	Cleared  int
	ClearErr error
}

func (c *fakeCookies) Clear(context.Context) error {
	c.Cleared++
	return c.ClearErr
}
