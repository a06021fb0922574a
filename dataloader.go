// Package dataloader coalesces many fine-grained, concurrently issued
// per-key lookups into a small number of coarse-grained batch calls against
// a backing source. It exists to solve the N+1 fan-out problem that shows up
// when resolving hierarchical queries: a GraphQL resolver that, for each of M
// parent objects, independently fetches a child object turns M sibling
// lookups into M trips to the backend. Wired through a dataloader they become
// one.
//
// Two loader flavors share this package: Loader memoizes results for the
// life of the instance (see cached_loader.go); UncachedLoader accounts for
// each call independently and never memoizes (see uncached_loader.go). Both
// are built around the same batching coordinator: callers enqueue a key,
// wait briefly for siblings to do the same, and one of them dispatches the
// whole group to a user-supplied BatchFunc.
package dataloader

import (
	"context"
	"fmt"
)

// BatchFunc is supplied by the caller and resolves a set of keys in one
// trip to the backing source. keys is never empty and never contains
// duplicates. The returned map may omit keys the backend could not resolve;
// an omitted key surfaces as ErrNotFound to whichever caller asked for it.
//
// The loader never invokes BatchFunc concurrently with itself on the same
// instance — see the loadFnMu field of Loader in cached_loader.go.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) map[K]V

// Result is what the non-cached loader hands back to a caller: either a
// value or the error the batch function (or the loader itself) produced for
// that key.
type Result[V any] struct {
	Value V
	Err   error
}

// UncachedBatchFunc is supplied to NewUncached. Unlike the cached variant's
// BatchFunc, it carries its own MaxBatchSize and reports per-key failure
// explicitly via Result rather than by omission.
type UncachedBatchFunc[K comparable, V any] interface {
	// Load resolves keys, a non-empty slice of distinct values no longer
	// than MaxBatchSize. The returned map's keys must be a superset of
	// keys — a key missing from the result is a contract violation and
	// is fatal to the caller that requested it, not a recoverable miss.
	Load(ctx context.Context, keys []K) map[K]Result[V]

	// MaxBatchSize bounds how many keys a single Load call may receive.
	MaxBatchSize() int
}

// UncachedBatchFuncFn adapts a plain function plus a fixed batch size into
// an UncachedBatchFunc, the way http.HandlerFunc adapts a function to
// http.Handler.
type UncachedBatchFuncFn[K comparable, V any] struct {
	Fn      func(ctx context.Context, keys []K) map[K]Result[V]
	MaxKeys int
}

// Load calls through to Fn.
func (f UncachedBatchFuncFn[K, V]) Load(ctx context.Context, keys []K) map[K]Result[V] {
	return f.Fn(ctx, keys)
}

// MaxBatchSize returns MaxKeys.
func (f UncachedBatchFuncFn[K, V]) MaxBatchSize() int { return f.MaxKeys }

// KeyError reports a failure for a specific key, recoverable via errors.As.
// Loader wraps ErrNotFound in a KeyError and UncachedLoader wraps
// ErrContractViolation in one; a backend error that an UncachedBatchFunc
// reports in a Result is returned to the caller as given, not wrapped.
type KeyError[K comparable] struct {
	Key K
	err error
}

// Error implements error.
func (e *KeyError[K]) Error() string {
	return fmt.Sprintf("dataloader: key %v: %s", e.Key, e.err)
}

// Unwrap returns the underlying error so errors.Is/errors.As see through it.
func (e *KeyError[K]) Unwrap() error { return e.err }

func newKeyError[K comparable](key K, err error) *KeyError[K] {
	return &KeyError[K]{Key: key, err: err}
}
