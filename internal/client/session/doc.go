// Package session holds the client's authentication state.
//
// A Store is the single source of truth for whether the user is logged in,
// as whom, and for which organizations. Identity claims are never stored on
// their own: they are decoded from the bearer token every time a token is
// installed, and the raw token is persisted through a Storage (the SQLite
// metadata repository in the CLI).
//
// # Lifecycle
//
//	Uninitialized --Initialize--> Authenticated | Anonymous
//	Authenticated --Refresh ok--> Authenticated (new token)
//	Authenticated --Logout / Refresh failure--> Anonymous
//	Anonymous     --SetToken--> Authenticated
//
// Initialize never adopts a persisted token that expires within the
// lookahead window; it refreshes first. OnVisible applies the same rule
// when the user comes back to an idle session.
//
// # Failure semantics
//
// Decode, storage and refresh failures are logged and degrade the session
// to Anonymous. No Store method returns them to the caller.
//
// # Concurrency
//
// A Store is safe for concurrent use. At most one refresh is in flight:
// concurrent Refresh calls share the result of a single Refresher call.
package session
