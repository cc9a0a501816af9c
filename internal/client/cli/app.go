package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/yiviportal/internal/client/client"
	"github.com/dmitrijs2005/yiviportal/internal/client/config"
	"github.com/dmitrijs2005/yiviportal/internal/client/issuance"
	"github.com/dmitrijs2005/yiviportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/yiviportal/internal/client/services"
	"github.com/dmitrijs2005/yiviportal/internal/client/session"
	"github.com/dmitrijs2005/yiviportal/internal/filex"
	"github.com/dmitrijs2005/yiviportal/internal/logging"
)

type Mode string

const (
	ModeUnknown Mode = ""
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// sessionView is what the REPL reads from the session store.
type sessionView interface {
	OnVisible(ctx context.Context)
	Snapshot() session.Session
	IsAuthenticated() bool
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	session     sessionView
	authService services.AuthService
	portal      services.PortalService
	credentials services.CredentialService
	scanner     *bufio.Scanner
	out         io.Writer

	mu   sync.Mutex
	mode Mode

	closers []func() error
}

// NewApp opens the local database, restores the persisted session and
// wires the API client, the session store and the services together.
// Call Close when done.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app, err := wire(ctx, c, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.closers = append(app.closers, db.Close)
	return app, nil
}

func wire(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB) (*App, error) {
	repo := metadata.NewSQLiteRepository(db)

	api, err := client.NewHTTPClient(c.APIEndpointURL, logger,
		client.WithRetryMax(c.RetryMax),
		client.WithTimeout(c.RequestTimeout),
	)
	if err != nil {
		return nil, err
	}

	jar, err := client.NewPersistentJar(ctx, api.BaseURL(), repo, logger)
	if err != nil {
		return nil, err
	}
	client.WithCookieJar(jar)(api)

	store := session.NewStore(session.NewJWTDecoder(), repo, api, logger,
		session.WithLookahead(c.RefreshLookahead),
		session.WithOnChange(func(snap session.Session) {
			logger.Info(context.Background(), "session changed",
				"state", snap.State.String(), "email", snap.Email, "role", string(snap.Role))
		}),
	)
	api.SetTokenSource(store)
	api.SetReauthenticator(store)

	widget := issuance.NewYiviWidget(api, issuance.NewTextPresenter(os.Stdout), logger,
		issuance.WithPollInterval(c.SessionPollInterval),
	)

	store.Initialize(ctx)

	return &App{
		config:      c,
		logger:      logger,
		session:     store,
		authService: services.NewAuthService(api, widget, store, jar, db, logger),
		portal:      services.NewPortalService(api, store),
		credentials: services.NewCredentialService(api),
		scanner:     bufio.NewScanner(os.Stdin),
		out:         os.Stdout,
	}, nil
}

func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.logger.Info(ctx, "connectivity changed", "mode", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

// beforeCommand runs the idle-refresh check: a command typed after a pause
// is the terminal's equivalent of the user coming back to the page.
func (a *App) beforeCommand(ctx context.Context) {
	a.session.OnVisible(ctx)
}

// Run starts the background watcher and blocks in the REPL until the user
// exits or ctx ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartWatcher(ctx, a.config.ResumeCheckInterval)

	a.Root(ctx)
}

// StartWatcher ticks every interval. On each tick it pings the backend to
// track connectivity and checks for a wall-clock jump, which means the
// machine was suspended; on resume the session gets the same idle-refresh
// check as a new command.
func (a *App) StartWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	detector := newResumeDetector(time.Now(), interval)

	for {
		select {
		case now := <-ticker.C:
			if detector.observe(now) {
				a.logger.Debug(ctx, "resume detected")
				a.session.OnVisible(ctx)
			}

			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// resumeDetector flags a tick that arrives much later by the wall clock
// than the ticker period allows. Ticker periods follow the monotonic
// clock, which stands still while the machine sleeps; the wall clock does
// not.
type resumeDetector struct {
	last      time.Time
	threshold time.Duration
}

func newResumeDetector(start time.Time, interval time.Duration) *resumeDetector {
	return &resumeDetector{last: start.Round(0), threshold: 2 * interval}
}

func (d *resumeDetector) observe(now time.Time) bool {
	now = now.Round(0)
	gap := now.Sub(d.last)
	d.last = now
	return gap > d.threshold
}
