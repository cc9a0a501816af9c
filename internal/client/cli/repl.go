package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	beforeCommand(ctx context.Context)

	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Refresh(ctx context.Context) error
	Reset(ctx context.Context) error

	Search(ctx context.Context, args []string) error
	Envs(ctx context.Context) error

	Orgs(ctx context.Context) error
	Org(ctx context.Context, slug string) error
	RegisterOrg(ctx context.Context) error
	Maintainers(ctx context.Context, slug string) error
	AddMaintainer(ctx context.Context, slug, email string) error
	RemoveMaintainer(ctx context.Context, slug, email string) error
	RelyingParties(ctx context.Context, slug string) error
	AddRelyingParty(ctx context.Context, slug string) error
	RemoveRelyingParty(ctx context.Context, slug, env, rpSlug string) error
}

const (
	helpAnonymous = "Available commands: login, search [query] [--env production,staging,demo], envs, reset, help, exit"
	helpLoggedIn  = "Available commands: whoami, refresh, logout, search [query] [--env ...], envs, " +
		"orgs, org <slug>, register-org, maintainers <slug>, add-maintainer <slug> <email>, " +
		"remove-maintainer <slug> <email>, rps <slug>, add-rp <slug>, remove-rp <slug> <env> <rp-slug>, reset, help, exit"
)

// runREPL starts a simple read–eval–print loop for the portal CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Before every command the
// session gets its idle-refresh check. Unknown commands and missing
// arguments are reported back to the user. The loop exits on scanner EOF or
// when the user types "exit" or "quit".
//
// A failing command prints a message scoped to that command (see
// describeError) and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("yivi%s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		a.beforeCommand(ctx)

		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn(describeError(cmd, err))
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// usageError is reported verbatim.
type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	need := func(n int, usage string) error {
		if len(args) != n {
			return usageError(usage)
		}
		return nil
	}

	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpAnonymous)
		}
		return nil

	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.Whoami(ctx)
	case "refresh":
		return a.Refresh(ctx)
	case "reset":
		return a.Reset(ctx)

	case "search":
		return a.Search(ctx, args)
	case "envs":
		return a.Envs(ctx)

	case "orgs":
		return a.Orgs(ctx)
	case "org":
		if err := need(1, "org <slug>"); err != nil {
			return err
		}
		return a.Org(ctx, args[0])
	case "register-org":
		return a.RegisterOrg(ctx)
	case "maintainers":
		if err := need(1, "maintainers <slug>"); err != nil {
			return err
		}
		return a.Maintainers(ctx, args[0])
	case "add-maintainer":
		if err := need(2, "add-maintainer <slug> <email>"); err != nil {
			return err
		}
		return a.AddMaintainer(ctx, args[0], args[1])
	case "remove-maintainer":
		if err := need(2, "remove-maintainer <slug> <email>"); err != nil {
			return err
		}
		return a.RemoveMaintainer(ctx, args[0], args[1])
	case "rps":
		if err := need(1, "rps <slug>"); err != nil {
			return err
		}
		return a.RelyingParties(ctx, args[0])
	case "add-rp":
		if err := need(1, "add-rp <slug>"); err != nil {
			return err
		}
		return a.AddRelyingParty(ctx, args[0])
	case "remove-rp":
		if err := need(3, "remove-rp <slug> <env> <rp-slug>"); err != nil {
			return err
		}
		return a.RemoveRelyingParty(ctx, args[0], args[1], args[2])

	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}
