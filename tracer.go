package dataloader

import "context"

// TraceLoadFinishFunc is invoked when a traced Load call completes.
type TraceLoadFinishFunc[V any] func(Result[V])

// TraceBatchFinishFunc is invoked when a traced batch dispatch completes.
// It takes no result: the cached and non-cached loaders shape their batch
// results differently (map[K]V vs map[K]Result[V]), and neither tracer
// adapter in this repo needs to inspect the payload to close out a span.
type TraceBatchFinishFunc func()

// Tracer lets a loader report its Load and batch-dispatch operations to an
// external tracing system. It is optional; the zero value for both loader
// variants is NoopTracer, which does nothing.
type Tracer[K comparable, V any] interface {
	// TraceLoad is called at the start of Load/TryLoad.
	TraceLoad(ctx context.Context, key K) (context.Context, TraceLoadFinishFunc[V])
	// TraceBatch is called immediately before a batch function dispatch.
	TraceBatch(ctx context.Context, keys []K) (context.Context, TraceBatchFinishFunc)
}

// NoopTracer is the default Tracer; every method is a no-op.
type NoopTracer[K comparable, V any] struct{}

// TraceLoad implements Tracer.
func (NoopTracer[K, V]) TraceLoad(ctx context.Context, _ K) (context.Context, TraceLoadFinishFunc[V]) {
	return ctx, func(Result[V]) {}
}

// TraceBatch implements Tracer.
func (NoopTracer[K, V]) TraceBatch(ctx context.Context, _ []K) (context.Context, TraceBatchFinishFunc) {
	return ctx, func() {}
}
