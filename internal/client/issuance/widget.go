// Package issuance runs the Yivi disclosure ceremony that logs a user in.
//
// The ceremony is hidden behind the Widget capability: Start hands a
// session to the user's Yivi app and resolves with an access token once
// the attributes are disclosed. YiviWidget is the concrete adapter for
// the portal backend; tests swap in their own Widget.
package issuance

import (
	"context"
	"time"

	"github.com/dmitrijs2005/yiviportal/internal/client/client"
)

// SessionConfig tunes a single ceremony.
type SessionConfig struct {
	// Language selects the rendering of user-facing texts ("en" or "nl").
	Language string
	// Timeout bounds the whole ceremony; zero leaves it to ctx.
	Timeout time.Duration
}

// Widget runs a disclosure session and yields the resulting access token.
type Widget interface {
	Start(ctx context.Context, cfg SessionConfig) (string, error)
}

// Presenter shows a session pointer to the user so their Yivi app can join.
type Presenter interface {
	Present(ctx context.Context, ptr client.SessionPointer, lang string) error
	// Progress reports a status change while the session runs.
	Progress(status Status)
}

// Backend is the part of the portal API the ceremony needs.
type Backend interface {
	StartSession(ctx context.Context) (*client.SessionStart, error)
	SessionResult(ctx context.Context, sessionToken string) (string, error)
}

// Status is the state of a session as reported by the Yivi server.
type Status string

const (
	StatusInitialized Status = "INITIALIZED"
	StatusPairing     Status = "PAIRING"
	StatusConnected   Status = "CONNECTED"
	StatusCancelled   Status = "CANCELLED"
	StatusDone        Status = "DONE"
	StatusTimeout     Status = "TIMEOUT"
)

// Final reports whether no further status change will happen.
func (s Status) Final() bool {
	return s == StatusDone || s == StatusCancelled || s == StatusTimeout
}
