package dataloader

import (
	"context"
	"runtime"
	"time"
)

// WaitStrategy is a suspending operation whose sole purpose is to yield
// control for long enough that sibling callers can enqueue their own keys
// before the current caller proceeds to dispatch. It must return promptly
// if ctx is done.
//
// Exactly one wait strategy is in effect on a given loader: the built-in
// yield-based one (the default) or a custom one installed with
// WithCustomWait / WithUncachedCustomWait.
type WaitStrategy func(ctx context.Context)

// DefaultYieldCount is the number of cooperative yields YieldCount performs
// when no explicit count is configured.
const DefaultYieldCount = 10

// YieldCount returns a WaitStrategy that cooperatively yields to the Go
// scheduler n times. This is the canonical coordination window: on the
// runtime's work-stealing scheduler, yielding repeatedly gives other
// goroutines that are ready to run — including sibling Load calls in the
// same batching cohort — a chance to reach their own pre-dispatch point
// before this goroutine resumes and dispatches.
//
// A negative or zero n yields zero times, which still functions as a wait
// strategy but gives siblings essentially no opportunity to enqueue; it is
// only useful for tests that want to observe per-call dispatch.
func YieldCount(n int) WaitStrategy {
	return func(ctx context.Context) {
		for i := 0; i < n; i++ {
			if ctx.Err() != nil {
				return
			}
			runtime.Gosched()
		}
	}
}

// Delay returns a WaitStrategy that waits for a fixed duration instead of
// yielding. Schedulers that do not guarantee a yielding goroutine relinquishes
// to other ready goroutines in the same cohort should prefer this over
// YieldCount; a few hundred microseconds is usually enough to coalesce a
// request fan-out without adding perceptible latency.
func Delay(d time.Duration) WaitStrategy {
	return func(ctx context.Context) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
}
