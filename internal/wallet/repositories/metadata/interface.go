// Package metadata is a small key/value repository over the client's local
// sqlite database. The session store uses it to persist flat JSON records
// under well-known keys.
package metadata

import "context"

// Repository stores opaque byte values by key. Get returns (nil, nil) for a
// missing key so callers can distinguish absence from failure.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
