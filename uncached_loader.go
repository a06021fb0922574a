package dataloader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/loadkit/dataloader/metrics"
)

// UncachedLoader is the per-request batching coordinator: it shares the
// cached Loader's coordination window and dedup behavior but never
// memoizes. Every call to Load gets its own request id and its own entry in
// completed; once that entry is delivered it is removed. Two concurrent
// Load calls for the same key each get a pending entry (same key, distinct
// request ids), but dispatch deduplicates keys into a distinct set before
// invoking the batch function, and every request id sharing a key is
// credited an independent clone of that key's result.
type UncachedLoader[K comparable, V any] struct {
	batchFn UncachedBatchFunc[K, V]

	loadFnMu sync.Mutex

	stateMu   sync.Mutex
	pending   map[uint64]K
	completed map[uint64]Result[V]

	nextID uint64 // atomic; wrap-around permitted, since ids are removed on delivery

	wait    WaitStrategy
	tracer  Tracer[K, V]
	metrics metrics.Collector
}

// UncachedOption configures an UncachedLoader at construction time.
type UncachedOption[K comparable, V any] func(*UncachedLoader[K, V])

// WithUncachedYieldCount overrides DefaultYieldCount for the built-in wait
// strategy.
func WithUncachedYieldCount[K comparable, V any](n int) UncachedOption[K, V] {
	return func(u *UncachedLoader[K, V]) { u.wait = YieldCount(n) }
}

// WithUncachedCustomWait replaces the built-in yield-based wait strategy.
func WithUncachedCustomWait[K comparable, V any](strategy WaitStrategy) UncachedOption[K, V] {
	return func(u *UncachedLoader[K, V]) { u.wait = strategy }
}

// WithUncachedTracer installs a Tracer. The default is NoopTracer.
func WithUncachedTracer[K comparable, V any](t Tracer[K, V]) UncachedOption[K, V] {
	return func(u *UncachedLoader[K, V]) { u.tracer = t }
}

// WithUncachedCollector installs a metrics.Collector.
func WithUncachedCollector[K comparable, V any](c metrics.Collector) UncachedOption[K, V] {
	return func(u *UncachedLoader[K, V]) { u.metrics = c }
}

// NewUncached constructs an UncachedLoader around batchFn. batchFn.MaxBatchSize
// sources the batch-size bound; there is no separate WithMaxBatchSize option
// for this variant, since the batch function itself is the authority on how
// many keys it can accept in one call.
func NewUncached[K comparable, V any](batchFn UncachedBatchFunc[K, V], opts ...UncachedOption[K, V]) *UncachedLoader[K, V] {
	u := &UncachedLoader[K, V]{
		batchFn:   batchFn,
		pending:   make(map[uint64]K),
		completed: make(map[uint64]Result[V]),
		wait:      YieldCount(DefaultYieldCount),
		tracer:    NoopTracer[K, V]{},
		metrics:   noopCollector{},
	}
	for _, apply := range opts {
		apply(u)
	}
	return u
}

// NewUncachedWithYieldCount is a convenience constructor equivalent to
// NewUncached(batchFn, WithUncachedYieldCount(n)).
func NewUncachedWithYieldCount[K comparable, V any](batchFn UncachedBatchFunc[K, V], n int) *UncachedLoader[K, V] {
	return NewUncached[K, V](batchFn, WithUncachedYieldCount[K, V](n))
}

// drainPendingLocked moves every (requestID, key) pair out of u.pending.
// Callers must hold stateMu.
func (u *UncachedLoader[K, V]) drainPendingLocked() map[uint64]K {
	drained := u.pending
	u.pending = make(map[uint64]K)
	u.metrics.SetPendingKeys(0)
	return drained
}

// runBatch dedups drained's keys and invokes batchFn.Load once. It touches
// neither pending nor completed; callers credit the result themselves.
func (u *UncachedLoader[K, V]) runBatch(ctx context.Context, drained map[uint64]K) map[K]Result[V] {
	seen := make(map[K]struct{}, len(drained))
	keys := make([]K, 0, len(drained))
	for _, k := range drained {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil
	}

	dctx, finish := u.tracer.TraceBatch(detachedContext(ctx), keys)

	u.loadFnMu.Lock()
	out := u.batchFn.Load(dctx, keys)
	u.loadFnMu.Unlock()

	u.metrics.IncBatchCalls()
	finish()
	return out
}

// creditLocked assigns every drained request id its result, treating a key
// missing from out as a contract violation. Callers must hold stateMu.
func (u *UncachedLoader[K, V]) creditLocked(drained map[uint64]K, out map[K]Result[V]) {
	for reqID, key := range drained {
		res, ok := out[key]
		if !ok {
			u.completed[reqID] = Result[V]{Err: newKeyError(key, ErrContractViolation)}
			continue
		}
		u.completed[reqID] = res
	}
}

func (u *UncachedLoader[K, V]) deliver(res Result[V]) (V, error) {
	if res.Err != nil && errors.Is(res.Err, ErrContractViolation) {
		panic(res.Err)
	}
	return res.Value, res.Err
}

// Load resolves a single key. Two concurrent Load calls for the same key
// each produce their own pending entry and their own result, but the batch
// function sees the key only once: dispatch dedups before calling batchFn.
//
// A backend error the batch function reported for key is returned as err.
// A key the batch function's result omitted entirely is a contract
// violation: that caller's Load panics instead of returning, since an
// omitted key means the batch function itself is broken.
func (u *UncachedLoader[K, V]) Load(ctx context.Context, key K) (V, error) {
	ctx, finishLoad := u.tracer.TraceLoad(ctx, key)
	var result Result[V]
	defer func() { finishLoad(result) }()

	u.metrics.AddKeysRequested(1)
	reqID := atomic.AddUint64(&u.nextID, 1)
	maxBatchSize := u.batchFn.MaxBatchSize()

	// Phase 1: enqueue, possibly dispatch immediately.
	u.stateMu.Lock()
	u.pending[reqID] = key
	u.metrics.SetPendingKeys(len(u.pending))
	if len(u.pending) >= maxBatchSize {
		drained := u.drainPendingLocked()
		out := u.runBatch(ctx, drained) // stateMu held across this await.
		u.creditLocked(drained, out)
		res := u.completed[reqID]
		delete(u.completed, reqID)
		u.stateMu.Unlock()
		result = res
		return u.deliver(res)
	}
	u.stateMu.Unlock()

	// Phase 2: wait for siblings, then dispatch whatever is still pending.
	u.wait(ctx)

	u.stateMu.Lock()
	if res, ok := u.completed[reqID]; ok {
		delete(u.completed, reqID)
		u.stateMu.Unlock()
		result = res
		return u.deliver(res)
	}
	if len(u.pending) > 0 {
		drained := u.drainPendingLocked()
		out := u.runBatch(ctx, drained) // stateMu held so no peer sees its id drained but not yet credited.
		u.creditLocked(drained, out)
	}

	res, ok := u.completed[reqID]
	if ok {
		delete(u.completed, reqID)
	}
	u.stateMu.Unlock()

	if !ok {
		// Every drained request id is credited by creditLocked before
		// stateMu is released; reaching here would mean a bug in the
		// bookkeeping above, not a condition callers can recover from.
		panic("dataloader: internal error: request id missing from completed after dispatch")
	}
	result = res
	return u.deliver(res)
}

// LoadMany is a simple sequential fan-out over Load: it calls Load once per
// key, one at a time, and shares no coordination window across them. A key
// that appears more than once in keys still gets its own Load call, but the
// returned map is keyed by key, so the last call's result is the one kept.
//
// This is deliberately not concurrent: unlike the cached loader's
// TryLoadMany, which is specified to share a single wait and a single
// post-wait dispatch across every requested key, the non-cached variant's
// load_many coalesces nothing — each key pays for its own coordination
// window.
func (u *UncachedLoader[K, V]) LoadMany(ctx context.Context, keys []K) map[K]Result[V] {
	results := make(map[K]Result[V], len(keys))
	for _, k := range keys {
		v, err := u.Load(ctx, k)
		results[k] = Result[V]{Value: v, Err: err}
	}
	return results
}
