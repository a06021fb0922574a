package dataloader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingBatchFn resolves every key to itself (as a string) and counts how
// many times it was invoked and with how many keys, for asserting dedup and
// call-count behavior.
type countingBatchFn struct {
	maxBatchSize int
	calls        int32
	mu           sync.Mutex
	callSizes    []int
	fail         map[int]error
	omit         map[int]bool
}

func (f *countingBatchFn) Load(_ context.Context, keys []int) map[int]Result[string] {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.callSizes = append(f.callSizes, len(keys))
	f.mu.Unlock()

	out := make(map[int]Result[string], len(keys))
	for _, k := range keys {
		if f.omit[k] {
			continue
		}
		if err, ok := f.fail[k]; ok {
			out[k] = Result[string]{Err: err}
			continue
		}
		out[k] = Result[string]{Value: "v"}
	}
	return out
}

func (f *countingBatchFn) MaxBatchSize() int { return f.maxBatchSize }

// Scenario F: two concurrent Load calls for the same key dedup to one
// batch call, and both callers receive an equivalent result.
func TestUncachedLoader_ScenarioF_RequestIdentity(t *testing.T) {
	t.Parallel()

	fn := &countingBatchFn{maxBatchSize: 10}
	loader := NewUncached[int, string](fn)

	ctx := context.Background()
	var wg sync.WaitGroup
	results := make([]string, 2)
	errs := make([]error, 2)
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			v, err := loader.Load(ctx, 42)
			results[i] = v
			errs[i] = err
		}()
	}
	close(start)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, "v", results[0])
	assert.Equal(t, "v", results[1])
	assert.Equal(t, int32(1), atomic.LoadInt32(&fn.calls))
}

func TestUncachedLoader_BackendErrorIsReturnedNotPaniced(t *testing.T) {
	t.Parallel()

	backendErr := errors.New("backend exploded")
	fn := &countingBatchFn{maxBatchSize: 10, fail: map[int]error{1: backendErr}}
	loader := NewUncached[int, string](fn)

	_, err := loader.Load(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)
}

func TestUncachedLoader_ContractViolationPanics(t *testing.T) {
	t.Parallel()

	fn := &countingBatchFn{maxBatchSize: 10, omit: map[int]bool{1: true}}
	loader := NewUncached[int, string](fn)

	assert.Panics(t, func() {
		_, _ = loader.Load(context.Background(), 1)
	})
}

func TestUncachedLoader_MaxBatchSizeFromBatchFn(t *testing.T) {
	t.Parallel()

	fn := &countingBatchFn{maxBatchSize: 2}
	loader := NewUncached[int, string](fn)

	ctx := context.Background()
	var wg sync.WaitGroup
	start := make(chan struct{})
	for _, k := range []int{1, 2, 3} {
		k := k
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, _ = loader.Load(ctx, k)
		}()
	}
	close(start)
	wg.Wait()

	fn.mu.Lock()
	defer fn.mu.Unlock()
	for _, size := range fn.callSizes {
		assert.LessOrEqual(t, size, 2)
	}
}

func TestUncachedLoader_LoadManyReturnsMapKeyedByKey(t *testing.T) {
	t.Parallel()

	fn := &countingBatchFn{maxBatchSize: 10}
	loader := NewUncached[int, string](fn)

	results := loader.LoadMany(context.Background(), []int{1, 2, 1})
	require.Len(t, results, 2)
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, "v", r.Value)
	}
}

// LoadMany is a sequential fan-out with no shared wait: each key runs its
// own Load call to completion (and its own dispatch, since no sibling is
// enqueuing concurrently) before the next key starts, unlike TryLoadMany on
// the cached loader, which shares one wait and one dispatch across all of
// its keys.
func TestUncachedLoader_LoadManyDoesNotShareABatchWindow(t *testing.T) {
	t.Parallel()

	fn := &countingBatchFn{maxBatchSize: 10}
	loader := NewUncached[int, string](fn)

	_ = loader.LoadMany(context.Background(), []int{1, 2, 3})

	require.Equal(t, int32(3), atomic.LoadInt32(&fn.calls))
	fn.mu.Lock()
	defer fn.mu.Unlock()
	for _, size := range fn.callSizes {
		assert.Equal(t, 1, size, "each LoadMany key should dispatch alone, not coalesced with siblings")
	}
}

func TestUncachedLoader_NeverMemoizes(t *testing.T) {
	t.Parallel()

	fn := &countingBatchFn{maxBatchSize: 10}
	loader := NewUncached[int, string](fn)

	_, err := loader.Load(context.Background(), 1)
	require.NoError(t, err)
	_, err = loader.Load(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&fn.calls), "non-cached loader must dispatch again for a repeat key")
}
