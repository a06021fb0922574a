package dataloader

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestYieldCountReturnsPromptlyOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		YieldCount(1_000_000)(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("YieldCount did not return promptly after ctx was cancelled")
	}
}

func TestYieldCountZeroIsNoop(t *testing.T) {
	t.Parallel()

	start := time.Now()
	YieldCount(0)(context.Background())
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestDelayWaitsApproximatelyD(t *testing.T) {
	t.Parallel()

	start := time.Now()
	Delay(20 * time.Millisecond)(context.Background())
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestDelayReturnsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	Delay(time.Hour)(ctx)
	assert.Less(t, time.Since(start), time.Second)
}
