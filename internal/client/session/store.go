package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/yiviportal/internal/common"
	"github.com/dmitrijs2005/yiviportal/internal/logging"
	"golang.org/x/sync/singleflight"
)

// DefaultLookahead is how close to expiry a token may be before it is
// refreshed instead of trusted.
const DefaultLookahead = 60 * time.Second

const refreshKey = "refresh"

// State is the coarse authentication state of a Store.
type State int

const (
	StateUninitialized State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "uninitialized"
	}
}

// Storage persists the raw token between runs. Get returns (nil, nil) when
// nothing is stored. metadata.Repository satisfies it.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Refresher exchanges the current refresh credential for a new access token.
type Refresher interface {
	RefreshToken(ctx context.Context) (string, error)
}

// Session is an immutable snapshot of a Store.
type Session struct {
	State             State
	Token             string
	Email             string
	Role              Role
	OrganizationSlugs []string
	ExpiresAt         time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLookahead overrides DefaultLookahead.
func WithLookahead(d time.Duration) Option {
	return func(s *Store) { s.lookahead = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithOnChange registers a callback run after every token change. It is
// called without the Store locks held.
func WithOnChange(fn func(Session)) Option {
	return func(s *Store) { s.onChange = fn }
}

// Store implements the session state machine described in the package doc.
type Store struct {
	decoder   TokenDecoder
	storage   Storage
	refresher Refresher
	logger    logging.Logger
	lookahead time.Duration
	now       func() time.Time
	onChange  func(Session)

	group singleflight.Group

	// writeMu orders token changes together with their persistence.
	writeMu sync.Mutex

	mu          sync.RWMutex
	gen         uint64
	token       string
	claims      *Claims
	initialized bool
}

// NewStore builds a Store. It starts Uninitialized; call Initialize once at
// startup.
func NewStore(decoder TokenDecoder, storage Storage, refresher Refresher, logger logging.Logger, opts ...Option) *Store {
	s := &Store{
		decoder:   decoder,
		storage:   storage,
		refresher: refresher,
		logger:    logger.With("component", "session"),
		lookahead: DefaultLookahead,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetToken installs token, or clears the session when token is empty.
//
// A token that fails to decode is treated as absent: the session is cleared
// and nothing is persisted.
func (s *Store) SetToken(ctx context.Context, token string) {
	s.setToken(ctx, token)
}

// Logout clears the in-memory and the persisted token.
func (s *Store) Logout(ctx context.Context) {
	s.setToken(ctx, "")
}

// setToken reports whether a token is installed afterwards.
func (s *Store) setToken(ctx context.Context, token string) bool {
	installed, _ := s.swapToken(ctx, token, nil)
	return installed
}

// swapToken installs token. With expect set, it only does so while the
// generation still equals *expect; applied is false otherwise and nothing
// changes. Every applied swap bumps the generation.
func (s *Store) swapToken(ctx context.Context, token string, expect *uint64) (installed, applied bool) {
	var claims *Claims
	if token != "" {
		decoded, err := s.decoder.Decode(token)
		if err != nil {
			s.logger.Warn(ctx, "discarding undecodable token", "error", err)
			token = ""
		} else {
			claims = decoded
		}
	}

	s.writeMu.Lock()
	s.mu.Lock()
	if expect != nil && s.gen != *expect {
		s.mu.Unlock()
		s.writeMu.Unlock()
		return false, false
	}
	s.gen++
	s.token = token
	s.claims = claims
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, token)
	s.writeMu.Unlock()

	if s.onChange != nil {
		s.onChange(snap)
	}
	return claims != nil, true
}

func (s *Store) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func (s *Store) persist(ctx context.Context, token string) {
	var err error
	if token == "" {
		err = s.storage.Delete(ctx, common.TokenStorageKey)
	} else {
		err = s.storage.Set(ctx, common.TokenStorageKey, []byte(token))
	}
	if err != nil {
		s.logger.Error(ctx, "persisting token failed", "error", err)
	}
}

// Initialize loads the persisted token. A token expiring within the
// lookahead window is refreshed rather than adopted. The Store is marked
// initialized whatever the outcome.
func (s *Store) Initialize(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.initialized = true
		s.mu.Unlock()
	}()

	raw, err := s.storage.Get(ctx, common.TokenStorageKey)
	if err != nil {
		s.logger.Error(ctx, "reading persisted token failed", "error", err)
		s.setToken(ctx, "")
		return
	}
	if len(raw) == 0 {
		s.setToken(ctx, "")
		return
	}

	claims, err := s.decoder.Decode(string(raw))
	if err != nil {
		s.logger.Warn(ctx, "persisted token is not decodable", "error", err)
		s.setToken(ctx, "")
		return
	}

	if s.expiresSoon(claims) {
		s.logger.Debug(ctx, "persisted token near expiry, refreshing", "exp", claims.ExpiresAt())
		s.Refresh(ctx)
		return
	}

	s.setToken(ctx, string(raw))
}

// Refresh obtains a new token from the Refresher and installs it. Concurrent
// callers share one in-flight request. On failure the session becomes
// Anonymous and ok is false.
//
// A caller whose ctx ends stops waiting; the shared request itself runs to
// completion so the other waiters still get its result.
func (s *Store) Refresh(ctx context.Context) (token string, ok bool) {
	ch := s.group.DoChan(refreshKey, func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", false
		}
		return res.Val.(string), true
	case <-ctx.Done():
		return "", false
	}
}

func (s *Store) refresh(ctx context.Context) (string, error) {
	gen := s.generation()

	token, err := s.refresher.RefreshToken(ctx)
	if err != nil {
		s.logger.Warn(ctx, "token refresh failed, logging out", "error", err)
		if _, applied := s.swapToken(ctx, "", &gen); !applied {
			return s.superseded(ctx)
		}
		return "", errors.Join(common.ErrRefreshFailed, err)
	}

	installed, applied := s.swapToken(ctx, token, &gen)
	if !applied {
		return s.superseded(ctx)
	}
	if !installed {
		return "", errors.Join(common.ErrRefreshFailed, common.ErrInvalidToken)
	}
	s.logger.Info(ctx, "session refreshed", "exp", s.Expiry())
	return token, nil
}

// superseded handles a refresh whose result arrived after a logout or a
// new login. The newer state stands; waiters get its token, if any.
func (s *Store) superseded(ctx context.Context) (string, error) {
	s.logger.Debug(ctx, "session changed during refresh, result discarded")
	if token := s.Token(); token != "" {
		return token, nil
	}
	return "", common.ErrRefreshFailed
}

// OnVisible is the idle-refresh trigger: call it when the user returns to
// the application (a new command after a pause, a resume from suspend). It
// refreshes an authenticated session whose token expires within the
// lookahead window.
func (s *Store) OnVisible(ctx context.Context) {
	s.mu.RLock()
	claims := s.claims
	s.mu.RUnlock()

	if claims == nil || !s.expiresSoon(claims) {
		return
	}
	s.logger.Debug(ctx, "token near expiry on resume, refreshing", "exp", claims.ExpiresAt())
	s.Refresh(ctx)
}

func (s *Store) expiresSoon(c *Claims) bool {
	return !c.ExpiresAt().After(s.now().Add(s.lookahead))
}

// Token returns the raw bearer token, or "" when anonymous.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return ""
	}
	return s.claims.Email
}

func (s *Store) Role() Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return ""
	}
	return s.claims.Role
}

// OrganizationSlugs returns a copy of the organizations the subject
// maintains.
func (s *Store) OrganizationSlugs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return nil
	}
	return slices.Clone(s.claims.OrganizationSlugs)
}

// Expiry returns the token expiry, zero when anonymous.
func (s *Store) Expiry() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return time.Time{}
	}
	return s.claims.ExpiresAt()
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims != nil
}

func (s *Store) IsAdmin() bool {
	return s.Role() == RoleAdmin
}

// IsMaintainerOf reports whether the subject may manage the organization
// with the given slug. Admins may manage every organization.
func (s *Store) IsMaintainerOf(slug string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return false
	}
	return s.claims.Role == RoleAdmin || slices.Contains(s.claims.OrganizationSlugs, slug)
}

// Initialized reports whether Initialize has completed, so callers can tell
// "not known yet" from "known to be logged out".
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	switch {
	case s.claims != nil:
		return StateAuthenticated
	case s.initialized:
		return StateAnonymous
	default:
		return StateUninitialized
	}
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Session {
	snap := Session{State: s.stateLocked(), Token: s.token}
	if s.claims != nil {
		c := s.claims.clone()
		snap.Email = c.Email
		snap.Role = c.Role
		snap.OrganizationSlugs = c.OrganizationSlugs
		snap.ExpiresAt = c.ExpiresAt()
	}
	return snap
}
