// Package client contains the client-side building blocks for talking to
// the Yivi portal backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): token
//     refresh, the login session endpoints, credential and environment
//     listings, and organization, maintainer and relying-party calls.
//  2. A JSON-over-HTTP implementation (see HTTPClient) built on
//     go-retryablehttp. It attaches the bearer token from a TokenSource,
//     tags every call with an X-Request-ID, and on a 401 asks its
//     Reauthenticator for a fresh token and retries once.
//  3. PersistentJar, a cookie jar that keeps the refresh cookie across
//     runs in the local metadata store.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring
//     SQLite and the embedded goose migrations.
//
// # Error Handling
//
// Responses are mapped to sentinel errors callers match with errors.Is:
// ErrUnavailable (transport failures, 5xx), ErrUnauthorized (401),
// ErrForbidden (403), ErrNotFound (404). A 400/422 with a JSON object body
// becomes *FieldErrors, which unwraps to common.ErrValidation.
//
// # Concurrency & Contexts
//
// HTTPClient and PersistentJar are safe for concurrent use. All API calls
// accept a context.Context and honor cancellation.
package client
