// Package kv keeps small JSON values next to a document: the device
// identity, the last synchronization report and the changes that have not
// been synchronized yet.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is wrapped by Store.Get when a key is missing or expired.
var ErrNotFound = errors.New("key not found")

// Store is a persistent key-value store with JSON values.
type Store interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key joins a scope and a name into a store key.
func Key(scope, name string) string {
	return scope + ":" + name
}
