package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/yiviportal/internal/client/issuance"
)

// loginTimeout bounds the whole Yivi ceremony.
const loginTimeout = 5 * time.Minute

// Indirections to the input helpers, swapped in tests.
var (
	getSimpleText = GetSimpleText
	getList       = GetList
	getPairs      = GetPairs
	confirm       = Confirm
)

// now is swapped in tests.
var now = time.Now

func (a *App) language() string {
	if a.config == nil || a.config.Language == "" {
		return "en"
	}
	return a.config.Language
}

// Login runs the Yivi ceremony. An existing session is kept; log out
// first to switch identities.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintf(a.out, "Already logged in as %s. Type 'logout' first to switch.\n", a.session.Snapshot().Email)
		return nil
	}

	snap, err := a.authService.Login(ctx, issuance.SessionConfig{Language: a.language(), Timeout: loginTimeout})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", snap.Email, snap.Role)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	snap, err := a.authService.Whoami(ctx)
	if err != nil {
		return err
	}
	orgs := "-"
	if len(snap.OrganizationSlugs) > 0 {
		orgs = strings.Join(snap.OrganizationSlugs, ", ")
	}
	fmt.Fprintf(a.out, "Email:         %s\n", snap.Email)
	fmt.Fprintf(a.out, "Role:          %s\n", snap.Role)
	fmt.Fprintf(a.out, "Organizations: %s\n", orgs)
	fmt.Fprintf(a.out, "Token expires: %s (in %s)\n",
		snap.ExpiresAt.Local().Format(time.DateTime), snap.ExpiresAt.Sub(now()).Round(time.Second))
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	snap, err := a.authService.Refresh(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Session refreshed, token now expires %s\n", snap.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

// Reset wipes every locally stored value after confirmation.
func (a *App) Reset(ctx context.Context) error {
	ok, err := confirm(a.scanner, "This forgets your session and all local data. Continue?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Nothing changed")
		return nil
	}
	removed, err := a.authService.ResetLocal(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Local data cleared (%d entries)\n", removed)
	return nil
}
