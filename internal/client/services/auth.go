// Package services contains application services for the Yivi portal CLI.
// This file defines the authentication service: the Yivi login ceremony,
// logout, identity lookup, liveness probe and wiping of local state.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/yiviportal/internal/client/client"
	"github.com/dmitrijs2005/yiviportal/internal/client/issuance"
	"github.com/dmitrijs2005/yiviportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/yiviportal/internal/client/session"
	"github.com/dmitrijs2005/yiviportal/internal/common"
	"github.com/dmitrijs2005/yiviportal/internal/dbx"
	"github.com/dmitrijs2005/yiviportal/internal/logging"
)

// SessionStore is the part of session.Store the services rely on.
type SessionStore interface {
	SetToken(ctx context.Context, token string)
	Logout(ctx context.Context)
	Refresh(ctx context.Context) (string, bool)
	Snapshot() session.Session
	IsAuthenticated() bool
	IsMaintainerOf(slug string) bool
}

// CookieStore holds the refresh cookie. client.PersistentJar satisfies it.
type CookieStore interface {
	Clear(ctx context.Context) error
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: run the Yivi ceremony and install the resulting token.
//   - Logout: forget the token and the refresh cookie.
//   - Whoami: the current session; ErrUnauthorized when anonymous.
//   - Refresh: force a token refresh.
//   - Ping: check backend liveness.
//   - ResetLocal: wipe every locally persisted value.
type AuthService interface {
	Login(ctx context.Context, cfg issuance.SessionConfig) (session.Session, error)
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) (session.Session, error)
	Refresh(ctx context.Context) (session.Session, error)
	Ping(ctx context.Context) error
	ResetLocal(ctx context.Context) (int, error)
}

type authService struct {
	client  client.Client
	widget  issuance.Widget
	store   SessionStore
	cookies CookieStore
	db      dbx.TxBeginner
	logger  logging.Logger
}

// NewAuthService wires the ceremony, the session store and the local
// database together.
func NewAuthService(c client.Client, widget issuance.Widget, store SessionStore, cookies CookieStore, db dbx.TxBeginner, logger logging.Logger) AuthService {
	return &authService{
		client:  c,
		widget:  widget,
		store:   store,
		cookies: cookies,
		db:      db,
		logger:  logger.With("component", "auth"),
	}
}

func (a *authService) Login(ctx context.Context, cfg issuance.SessionConfig) (session.Session, error) {
	token, err := a.widget.Start(ctx, cfg)
	if err != nil {
		return session.Session{}, fmt.Errorf("login: %w", err)
	}

	a.store.SetToken(ctx, token)
	if !a.store.IsAuthenticated() {
		return session.Session{}, fmt.Errorf("login: %w", common.ErrInvalidToken)
	}

	snap := a.store.Snapshot()
	a.logger.Info(ctx, "logged in", "email", snap.Email, "role", snap.Role)
	return snap, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.store.Logout(ctx)
	if err := a.cookies.Clear(ctx); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	a.logger.Info(ctx, "logged out")
	return nil
}

func (a *authService) Whoami(ctx context.Context) (session.Session, error) {
	if !a.store.IsAuthenticated() {
		return session.Session{}, common.ErrUnauthorized
	}
	return a.store.Snapshot(), nil
}

func (a *authService) Refresh(ctx context.Context) (session.Session, error) {
	if _, ok := a.store.Refresh(ctx); !ok {
		return session.Session{}, common.ErrRefreshFailed
	}
	return a.store.Snapshot(), nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// ResetLocal deletes every persisted key in one transaction and then
// resets the in-memory session and cookies. It reports how many keys were
// removed.
func (a *authService) ResetLocal(ctx context.Context) (int, error) {
	var removed int
	err := dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		all, err := repo.List(ctx)
		if err != nil {
			return err
		}
		removed = len(all)
		return repo.Clear(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("reset local data: %w", err)
	}

	a.store.Logout(ctx)
	if err := a.cookies.Clear(ctx); err != nil {
		return removed, fmt.Errorf("clear cookies: %w", err)
	}
	return removed, nil
}
