// Package reducer implements the synchronization layer between an
// in-memory working copy of a record and its persisted row. A reducer
// holds one record at a time, mutates it through named actions, and
// writes it back on the synchronization pass that follows each change.
//
// The sentinel bool exists because loading a record is itself a state
// change: the pass right after a load must not write the freshly-loaded
// value straight back. The first Sync after a mount arms the sentinel
// and does nothing; every later Sync persists. Writes are
// last-value-wins; rapid dispatches before a pass collapse into one
// write of the final value.
//
// A reducer is the sole mutator of its record; it is not safe for
// concurrent use.
package reducer

import (
	"context"
	"errors"
)

// ErrNotMounted is returned when an action or sync runs before any
// record was mounted.
var ErrNotMounted = errors.New("reducer: no record mounted")

// LoadFunc fetches the record for a key.
type LoadFunc[K comparable, R any] func(ctx context.Context, key K) (R, error)

// WriteFunc persists the record under its key.
type WriteFunc[K comparable, R any] func(ctx context.Context, key K, record R) error

// Reducer keeps one record of type R, keyed by K, in sync with a store.
type Reducer[K comparable, R any] struct {
	load  LoadFunc[K, R]
	write WriteFunc[K, R]

	key      K
	current  *R
	sentinel bool
}

func New[K comparable, R any](load LoadFunc[K, R], write WriteFunc[K, R]) *Reducer[K, R] {
	return &Reducer[K, R]{load: load, write: write}
}

// Mount ensures the reducer holds the record for key. Holding a record
// for a different key (or none) triggers a load and disarms the
// sentinel; mounting the already-held key is a no-op. A load is never a
// write-back.
func (r *Reducer[K, R]) Mount(ctx context.Context, key K) error {
	if r.current != nil && r.key == key {
		return nil
	}
	record, err := r.load(ctx, key)
	if err != nil {
		return err
	}
	r.key = key
	r.current = &record
	r.sentinel = false
	return nil
}

// Current exposes the held record for reading and for action handlers.
// Nil before the first successful Mount.
func (r *Reducer[K, R]) Current() *R {
	return r.current
}

// Key returns the key of the held record.
func (r *Reducer[K, R]) Key() (K, bool) {
	var zero K
	if r.current == nil {
		return zero, false
	}
	return r.key, true
}

// Dispatch applies an action to the held record, synchronously and
// without persisting. Persistence happens on the next Sync pass.
func (r *Reducer[K, R]) Dispatch(action func(*R)) error {
	if r.current == nil {
		return ErrNotMounted
	}
	action(r.current)
	return nil
}

// Sync is the pass that runs after every state change. The first pass
// after a load arms the sentinel and writes nothing; each later pass
// persists the held record. Reports whether a write happened.
func (r *Reducer[K, R]) Sync(ctx context.Context) (bool, error) {
	if r.current == nil {
		return false, ErrNotMounted
	}
	if !r.sentinel {
		r.sentinel = true
		return false, nil
	}
	if err := r.write(ctx, r.key, *r.current); err != nil {
		return false, err
	}
	return true, nil
}
