package client

import (
	"context"

	"github.com/dmitrijs2005/yiviportal/internal/client/models"
)

// Client is the portal backend API as seen by the CLI.
type Client interface {
	Ping(ctx context.Context) error

	// RefreshToken exchanges the refresh cookie for a new access token.
	RefreshToken(ctx context.Context) (string, error)
	// StartSession opens a disclosure session for the login ceremony.
	StartSession(ctx context.Context) (*SessionStart, error)
	// SessionResult returns the access token of a completed session.
	SessionResult(ctx context.Context, sessionToken string) (string, error)

	ListCredentials(ctx context.Context) ([]models.Credential, error)
	ListEnvironments(ctx context.Context) ([]models.EnvironmentInfo, error)

	ListOrganizations(ctx context.Context) ([]models.Organization, error)
	GetOrganization(ctx context.Context, slug string) (*models.Organization, error)
	RegisterOrganization(ctx context.Context, req models.RegisterOrganizationRequest) (*models.Organization, error)

	ListMaintainers(ctx context.Context, orgSlug string) ([]models.Maintainer, error)
	AddMaintainer(ctx context.Context, orgSlug, email string) error
	DeleteMaintainer(ctx context.Context, orgSlug, email string) error

	ListRelyingParties(ctx context.Context, orgSlug string) ([]models.RelyingParty, error)
	CreateRelyingParty(ctx context.Context, orgSlug string, rp models.RelyingParty) error
	DeleteRelyingParty(ctx context.Context, orgSlug string, env models.Environment, rpSlug string) error
}

// SessionPointer is what a Yivi app needs to join a session: the session
// URL and the session type, usually rendered as a QR code.
type SessionPointer struct {
	URL  string `json:"u"`
	Type string `json:"irmaqr"`
}

// SessionStart is the backend's answer to StartSession.
type SessionStart struct {
	SessionPtr SessionPointer `json:"sessionPtr"`
	Token      string         `json:"token"`
}

// TokenSource yields the bearer token to attach to requests ("" for none).
// session.Store satisfies it.
type TokenSource interface {
	Token() string
}

// Reauthenticator obtains a fresh token after the backend rejected the
// current one. session.Store satisfies it.
type Reauthenticator interface {
	Refresh(ctx context.Context) (string, bool)
}
