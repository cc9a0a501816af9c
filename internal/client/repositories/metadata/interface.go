// Package metadata is the client's persistent key-value store. It plays the
// role browser local storage plays for the web portal: the bearer token and
// the refresh cookies live here between runs.
package metadata

import (
	"context"
)

// Repository is a string-keyed byte store. Get returns (nil, nil) when the
// key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
