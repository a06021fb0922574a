// Package otel adapts dataloader.Tracer to OpenTelemetry.
package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/loadkit/dataloader"
)

var _ dataloader.Tracer[string, string] = Tracer[string, string]{}

// Tracer implements dataloader.Tracer using an OpenTelemetry trace.Tracer.
type Tracer[K comparable, V any] struct {
	tr trace.Tracer
}

// NewTracer wraps tr. If tr is nil, the global otel.Tracer("loadkit/dataloader")
// is used instead.
func NewTracer[K comparable, V any](tr trace.Tracer) Tracer[K, V] {
	return Tracer[K, V]{tr: tr}
}

func (t Tracer[K, V]) tracer() trace.Tracer {
	if t.tr != nil {
		return t.tr
	}
	return otel.Tracer("loadkit/dataloader")
}

// TraceLoad starts a span around one Load/TryLoad call.
func (t Tracer[K, V]) TraceLoad(ctx context.Context, key K) (context.Context, dataloader.TraceLoadFinishFunc[V]) {
	spanCtx, span := t.tracer().Start(ctx, "dataloader.Load")
	span.SetAttributes(attribute.String("dataloader.key", fmt.Sprintf("%v", key)))

	return spanCtx, func(dataloader.Result[V]) {
		span.End()
	}
}

// TraceBatch starts a span around one batch function dispatch.
func (t Tracer[K, V]) TraceBatch(ctx context.Context, keys []K) (context.Context, dataloader.TraceBatchFinishFunc) {
	spanCtx, span := t.tracer().Start(ctx, "dataloader.Batch")
	span.SetAttributes(
		attribute.Int("dataloader.batch_size", len(keys)),
		attribute.String("dataloader.keys", fmt.Sprintf("%v", keys)),
	)

	return spanCtx, func() {
		span.End()
	}
}
