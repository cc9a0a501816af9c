// Package cli provides the interactive Yivi portal command-line client.
//
// It wires configuration, local storage, the portal API client, the session
// store and the services into an interactive REPL. Typical flow: restore the
// persisted session, start the background watcher, and execute user
// commands.
//
// Key features:
//   - Login with the Yivi app / Logout / Whoami / Refresh
//   - Credential search with environment toggles
//   - Organizations, maintainers and relying parties
//   - Reset of all local data
//
// Every command first gives the session its idle-refresh check, and the
// watcher repeats that check after the machine resumes from sleep.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartWatcher, and runREPL for details.
package cli
