// Package metadata stores small string key/value pairs in the local SQLite
// database. The session store keeps the bearer token and login email here.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set inserts or replaces the value of key.
	Set(ctx context.Context, key, value string) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
