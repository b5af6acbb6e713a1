// Package store defines the byte store the result cache talks to.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation).
//
// Keys handed to a Store are already namespaced ("<ns>:<key>"). The namespace
// is owned by the cache; external code writing under it may have its values
// rejected as corrupt on read and removed by Clear.
package store

import (
	"context"
	"errors"
	"iter"
	"time"
)

// ErrRejected is returned by stores that may refuse a write under pressure.
var ErrRejected = errors.New("store: write rejected")

// Store is a minimal byte store with TTLs, pattern scans and batched deletes.
// Must be safe for concurrent use.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes a key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Scan yields batches of keys matching a Redis-style glob. The sequence is
	// finite and meant to be ranged over once; it stops at the first error,
	// which is yielded with a nil batch.
	Scan(ctx context.Context, match string) iter.Seq2[[]string, error]

	// DelMany removes keys in as few round trips as the backend allows.
	DelMany(ctx context.Context, keys []string) error

	// Close releases resources. Safe to call more than once.
	Close(ctx context.Context) error
}

// Pinger is implemented by stores whose connection may not be ready yet.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prefixer is implemented by stores bound to a client that already scopes
// every key under its own prefix.
type Prefixer interface {
	KeyPrefix() string
}

// DefaultScanBatch is the batch size used when a store has no better hint.
const DefaultScanBatch = 100

// Batches yields keys in slices of at most size.
// It is a helper for in-process stores that can enumerate their keys.
func Batches(keys []string, size int) iter.Seq2[[]string, error] {
	if size <= 0 {
		size = DefaultScanBatch
	}
	return func(yield func([]string, error) bool) {
		for len(keys) > 0 {
			n := min(size, len(keys))
			if !yield(keys[:n:n], nil) {
				return
			}
			keys = keys[n:]
		}
	}
}
