package dataloader

import (
	"context"
	"sync"

	"github.com/loadkit/dataloader/metrics"
)

// DefaultMaxBatchSize is the batch-size bound new loaders use unless
// overridden with WithMaxBatchSize.
const DefaultMaxBatchSize = 200

// Loader is the memoizing batching coordinator. A single Loader is built
// once around a BatchFunc; every Load/TryLoad call against it (Loader
// itself, not a clone type, is shared by taking its address) shares one
// pending set and one result cache.
//
// A *Loader is safe to share across goroutines: multiple goroutines may call
// its methods concurrently, and since Go passes the same pointer to every
// caller there is no separate "clone" type — copying the pointer already
// hands out a handle onto the same shared state.
type Loader[K comparable, V any] struct {
	batchFn BatchFunc[K, V]

	// loadFnMu serializes calls to batchFn; it is always acquired after
	// stateMu, never before.
	loadFnMu sync.Mutex

	// stateMu protects cache and pending together. It is released across
	// the wait strategy so siblings can enqueue, and is held across every
	// batch dispatch (see dispatch call sites below).
	stateMu sync.Mutex
	cache   Cache[K, V]
	pending map[K]struct{}

	maxBatchSize int
	wait         WaitStrategy
	tracer       Tracer[K, V]
	metrics      metrics.Collector
}

// Option configures a Loader at construction time.
type Option[K comparable, V any] func(*Loader[K, V])

// WithMaxBatchSize overrides DefaultMaxBatchSize. A caller that inserts the
// key that brings the pending set to this size dispatches immediately
// instead of waiting.
func WithMaxBatchSize[K comparable, V any](n int) Option[K, V] {
	return func(l *Loader[K, V]) {
		if n > 0 {
			l.maxBatchSize = n
		}
	}
}

// WithYieldCount overrides DefaultYieldCount for the built-in wait strategy.
// It and WithCustomWait both set the wait strategy; whichever option is
// applied last wins, matching the Option application order.
func WithYieldCount[K comparable, V any](n int) Option[K, V] {
	return func(l *Loader[K, V]) { l.wait = YieldCount(n) }
}

// WithCustomWait replaces the built-in yield-based wait strategy entirely.
func WithCustomWait[K comparable, V any](strategy WaitStrategy) Option[K, V] {
	return func(l *Loader[K, V]) { l.wait = strategy }
}

// WithTracer installs a Tracer. The default is NoopTracer.
func WithTracer[K comparable, V any](t Tracer[K, V]) Option[K, V] {
	return func(l *Loader[K, V]) { l.tracer = t }
}

// WithCollector installs a metrics.Collector. The default records nothing.
func WithCollector[K comparable, V any](c metrics.Collector) Option[K, V] {
	return func(l *Loader[K, V]) { l.metrics = c }
}

type noopCollector struct{}

func (noopCollector) IncBatchCalls()       {}
func (noopCollector) AddKeysRequested(int) {}
func (noopCollector) IncCacheHits()        {}
func (noopCollector) IncCacheMisses()      {}
func (noopCollector) IncNotFound()         {}
func (noopCollector) SetPendingKeys(int)   {}

// New constructs a Loader around batchFn with an unbounded in-memory cache.
func New[K comparable, V any](batchFn BatchFunc[K, V], opts ...Option[K, V]) *Loader[K, V] {
	return NewWithCache[K, V](batchFn, NewInMemoryCache[K, V](), opts...)
}

// NewWithCache constructs a Loader around batchFn using the given Cache
// instead of the default unbounded in-memory one.
func NewWithCache[K comparable, V any](batchFn BatchFunc[K, V], cache Cache[K, V], opts ...Option[K, V]) *Loader[K, V] {
	l := &Loader[K, V]{
		batchFn:      batchFn,
		cache:        cache,
		pending:      make(map[K]struct{}),
		maxBatchSize: DefaultMaxBatchSize,
		wait:         YieldCount(DefaultYieldCount),
		tracer:       NoopTracer[K, V]{},
		metrics:      noopCollector{},
	}
	for _, apply := range opts {
		apply(l)
	}
	return l
}

// drainPendingLocked moves every key out of l.pending into a freshly
// allocated slice and empties the set. Callers must hold stateMu.
func (l *Loader[K, V]) drainPendingLocked() []K {
	keys := make([]K, 0, len(l.pending))
	for k := range l.pending {
		keys = append(keys, k)
	}
	l.pending = make(map[K]struct{})
	l.metrics.SetPendingKeys(0)
	return keys
}

// dispatch invokes batchFn under loadFnMu and inserts every returned pair
// into the cache. It does not touch stateMu itself; every caller holds
// stateMu across this call, so a peer can never find a drained key that is
// not yet in the cache.
func (l *Loader[K, V]) dispatch(ctx context.Context, keys []K) {
	if len(keys) == 0 {
		return
	}
	dctx, finish := l.tracer.TraceBatch(detachedContext(ctx), keys)

	l.loadFnMu.Lock()
	out := l.batchFn(dctx, keys)
	l.loadFnMu.Unlock()

	l.metrics.IncBatchCalls()
	for k, v := range out {
		l.cache.Insert(k, v)
	}
	finish()
}

// TryLoad is the central operation: it registers key with the batching
// coordinator, waits for siblings to do the same, ensures exactly one
// dispatch serves the cohort, and returns this caller's value.
//
// TryLoad returns ErrNotFound (wrapped in a *KeyError[K]) if the batch
// function's result omitted key.
func (l *Loader[K, V]) TryLoad(ctx context.Context, key K) (V, error) {
	ctx, finishLoad := l.tracer.TraceLoad(ctx, key)
	var zero V
	var result Result[V]
	defer func() { finishLoad(result) }()

	l.metrics.AddKeysRequested(1)

	// Phase 1: enqueue, possibly dispatch immediately.
	l.stateMu.Lock()
	if v, ok := l.cache.Get(key); ok {
		l.stateMu.Unlock()
		l.metrics.IncCacheHits()
		result = Result[V]{Value: v}
		return v, nil
	}
	l.metrics.IncCacheMisses()

	if _, already := l.pending[key]; !already {
		l.pending[key] = struct{}{}
		if len(l.pending) >= l.maxBatchSize {
			ks := l.drainPendingLocked()
			l.dispatch(ctx, ks) // stateMu held across this await.
			l.stateMu.Unlock()

			if v, ok := l.cache.Get(key); ok {
				result = Result[V]{Value: v}
				return v, nil
			}
			l.metrics.IncNotFound()
			err := newKeyError(key, ErrNotFound)
			result = Result[V]{Err: err}
			return zero, err
		}
		l.metrics.SetPendingKeys(len(l.pending))
	}
	l.stateMu.Unlock()

	// Phase 2: wait for siblings, then dispatch whatever is still pending.
	l.wait(ctx)

	l.stateMu.Lock()
	if v, ok := l.cache.Get(key); ok {
		l.stateMu.Unlock()
		result = Result[V]{Value: v}
		return v, nil
	}
	if len(l.pending) > 0 {
		ks := l.drainPendingLocked()
		l.dispatch(ctx, ks) // stateMu held so no peer sees the keys drained but not yet cached.
	}
	l.stateMu.Unlock()

	if v, ok := l.cache.Get(key); ok {
		result = Result[V]{Value: v}
		return v, nil
	}
	l.metrics.IncNotFound()
	err := newKeyError(key, ErrNotFound)
	result = Result[V]{Err: err}
	return zero, err
}

// Load is TryLoad's convenience wrapper: an omitted key is a program error,
// not a recoverable condition, so Load panics instead of returning
// ErrNotFound. Use TryLoad when a missing key is an expected possibility.
func (l *Loader[K, V]) Load(ctx context.Context, key K) V {
	v, err := l.TryLoad(ctx, key)
	if err != nil {
		panic(err)
	}
	return v
}

// TryLoadMany is semantically equivalent to calling TryLoad once per key,
// but shares a single wait and a single post-wait dispatch across all of
// them. If any requested key is unresolved after dispatch, the whole call
// fails with that key's ErrNotFound (first-miss policy) even if other keys
// did resolve.
func (l *Loader[K, V]) TryLoadMany(ctx context.Context, keys []K) (map[K]V, error) {
	results := make(map[K]V, len(keys))
	l.metrics.AddKeysRequested(len(keys))

	for _, key := range keys {
		l.stateMu.Lock()
		if v, ok := l.cache.Get(key); ok {
			l.stateMu.Unlock()
			l.metrics.IncCacheHits()
			results[key] = v
			continue
		}
		l.metrics.IncCacheMisses()

		if _, already := l.pending[key]; !already {
			l.pending[key] = struct{}{}
			if len(l.pending) >= l.maxBatchSize {
				ks := l.drainPendingLocked()
				l.dispatch(ctx, ks)
				l.stateMu.Unlock()
				continue
			}
			l.metrics.SetPendingKeys(len(l.pending))
		}
		l.stateMu.Unlock()
	}

	l.wait(ctx)

	l.stateMu.Lock()
	if len(l.pending) > 0 {
		ks := l.drainPendingLocked()
		l.dispatch(ctx, ks)
	}
	l.stateMu.Unlock()

	for _, key := range keys {
		if _, ok := results[key]; ok {
			continue
		}
		v, ok := l.cache.Get(key)
		if !ok {
			l.metrics.IncNotFound()
			return nil, newKeyError(key, ErrNotFound)
		}
		results[key] = v
	}
	return results, nil
}

// LoadMany is TryLoadMany's convenience wrapper; an unresolved key panics.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K) map[K]V {
	m, err := l.TryLoadMany(ctx, keys)
	if err != nil {
		panic(err)
	}
	return m
}

// Prime inserts value into the cache at key without invoking the batch
// function, warming the cache. It does not affect the pending set.
func (l *Loader[K, V]) Prime(key K, value V) {
	l.stateMu.Lock()
	defer l.stateMu.Unlock()
	l.cache.Insert(key, value)
}

// PrimeMany primes every pair in values under a single lock acquisition.
func (l *Loader[K, V]) PrimeMany(values map[K]V) {
	l.stateMu.Lock()
	defer l.stateMu.Unlock()
	for k, v := range values {
		l.cache.Insert(k, v)
	}
}

// Clear removes key from the cache, if present. It does not affect pending.
func (l *Loader[K, V]) Clear(key K) {
	l.stateMu.Lock()
	defer l.stateMu.Unlock()
	l.cache.Remove(key)
}

// ClearAll empties the cache. It does not affect pending.
func (l *Loader[K, V]) ClearAll() {
	l.stateMu.Lock()
	defer l.stateMu.Unlock()
	l.cache.Clear()
}
