package kv

import "context"

// Store is the shared counter and cache store. Keys never expire on their
// own; readers decide staleness.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error

	// Incr atomically adds one to the integer at key, treating a missing key as zero.
	Incr(ctx context.Context, key string) (int64, error)

	// Rollover atomically stores today under dateKey and zeroes counterKey
	// when dateKey holds any other value. It reports whether it reset.
	Rollover(ctx context.Context, dateKey, today, counterKey string) (bool, error)

	// CompareAndSwap replaces key with next only while it still holds prev.
	// An empty prev matches a missing key.
	CompareAndSwap(ctx context.Context, key, prev, next string) (bool, error)
}
