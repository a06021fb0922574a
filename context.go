package dataloader

import "context"

// detachedContext returns a new context detached from the lifetime of ctx,
// but which still returns the values of ctx. It is used to dispatch a batch
// call on behalf of a cohort of callers: the caller that happened to trigger
// the dispatch may be cancelled while
// its siblings are still waiting on the same batch, so the dispatch itself
// must not die with any one caller's context.
func detachedContext(ctx context.Context) context.Context {
	return &detached{Context: context.Background(), orig: ctx}
}

type detached struct {
	context.Context
	orig context.Context
}

// Value returns d.orig.Value(key), so tracing/request-scoped values survive
// detachment even though cancellation and deadline do not.
func (d *detached) Value(key interface{}) interface{} {
	return d.orig.Value(key)
}
