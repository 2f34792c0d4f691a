// Package kv provides the key-value repositories the account directory
// persists its records in. Every backend honours the same contract:
//
//   - Get returns (nil, nil) when the key does not exist.
//   - Set upserts.
//   - Delete is idempotent.
//   - Update is an atomic read-modify-write of a single key. The callback
//     receives the current value (nil when absent); if it returns an error
//     nothing is written and that error is returned to the caller.
package kv

import (
	"context"
	"errors"
)

// UpdateFunc computes the new value of a key from its current value.
type UpdateFunc func(current []byte) ([]byte, error)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// ErrUpdateConflict is returned when an optimistic update could not be
// applied after all retries.
var ErrUpdateConflict = errors.New("concurrent update conflict")
