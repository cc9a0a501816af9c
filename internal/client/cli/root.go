package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus() string {
	parts := make([]string, 0, 3)
	if snap := a.session.Snapshot(); snap.Email != "" {
		parts = append(parts, snap.Email)
		if snap.Role != "" {
			parts = append(parts, string(snap.Role))
		}
	}
	if m := a.Mode(); m != ModeUnknown {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf(" (%s)", strings.Join(parts, " "))
}

// Root prints the banner and runs the REPL on the app's input.
func (a *App) Root(ctx context.Context) {
	if stdinIsTerminal() {
		fmt.Fprintln(a.out, "Yivi portal CLI (type 'help' for commands)")
		if !a.isLoggedIn() {
			fmt.Fprintln(a.out, "You are not logged in. Type 'login' to log in with your Yivi app.")
		}
	}
	runREPL(ctx, a, a.getStatus, a.scanner)
}
