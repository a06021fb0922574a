// Package opentracing adapts dataloader.Tracer to the OpenTracing standard.
package opentracing

import (
	"context"
	"fmt"

	ot "github.com/opentracing/opentracing-go"

	"github.com/loadkit/dataloader"
)

var _ dataloader.Tracer[string, string] = Tracer[string, string]{}

// Tracer implements dataloader.Tracer using github.com/opentracing/opentracing-go.
type Tracer[K comparable, V any] struct{}

// TraceLoad starts a span around one Load/TryLoad call.
func (Tracer[K, V]) TraceLoad(ctx context.Context, key K) (context.Context, dataloader.TraceLoadFinishFunc[V]) {
	span, spanCtx := ot.StartSpanFromContext(ctx, "dataloader.Load")
	span.SetTag("dataloader.key", fmt.Sprintf("%v", key))

	return spanCtx, func(dataloader.Result[V]) {
		span.Finish()
	}
}

// TraceBatch starts a span around one batch function dispatch.
func (Tracer[K, V]) TraceBatch(ctx context.Context, keys []K) (context.Context, dataloader.TraceBatchFinishFunc) {
	span, spanCtx := ot.StartSpanFromContext(ctx, "dataloader.Batch")
	span.SetTag("dataloader.batch_size", len(keys))
	span.SetTag("dataloader.keys", fmt.Sprintf("%v", keys))

	return spanCtx, func() {
		span.Finish()
	}
}
