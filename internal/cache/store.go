// Package cache holds the local display cache of enrolled faces.
package cache

import (
	"context"
	"errors"
)

var (
	// ErrCacheMiss is returned when a key is not found in cache
	ErrCacheMiss = errors.New("cache miss")
	// ErrCorrupt is returned when the stored record cannot be parsed
	ErrCorrupt = errors.New("cache record is corrupt")
)

// Store is a durable key/value store. Values are opaque to the store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
