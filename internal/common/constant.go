// Package common contains shared constants and sentinel errors used across
// the Yivi portal client components.
package common

const (
	// AuthorizationHeaderName is the HTTP header carrying the bearer token on
	// outbound API requests.
	AuthorizationHeaderName = "Authorization"

	// RequestIDHeaderName correlates a client call with backend logs.
	RequestIDHeaderName = "X-Request-ID"

	// TokenStorageKey is the fixed key the bearer token is persisted under.
	TokenStorageKey = "token"

	// CookiesStorageKey holds the serialized cookie jar (refresh credential).
	CookiesStorageKey = "cookies"
)
