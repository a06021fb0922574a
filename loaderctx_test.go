package dataloader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RoundTripThroughContext(t *testing.T) {
	t.Parallel()

	loader := New[int, string](func(_ context.Context, keys []int) map[int]string {
		out := make(map[int]string, len(keys))
		for _, k := range keys {
			out[k] = "v"
		}
		return out
	})

	reg := NewRegistry().Register("users", loader)
	ctx := NewContext(context.Background(), reg)

	got, ok := LoaderFromContext[int, string](ctx, "users")
	require.True(t, ok)
	assert.Same(t, loader, got)

	_, ok = LoaderFromContext[int, string](ctx, "missing")
	assert.False(t, ok)

	_, ok = LoaderFromContext[int, string](context.Background(), "users")
	assert.False(t, ok)
}

func TestRegistry_WrongTypeParametersMiss(t *testing.T) {
	t.Parallel()

	loader := New[int, string](func(_ context.Context, keys []int) map[int]string {
		return nil
	})
	ctx := NewContext(context.Background(), NewRegistry().Register("users", loader))

	_, ok := LoaderFromContext[string, int](ctx, "users")
	assert.False(t, ok)
}

func TestRegistry_DuplicateRegisterPanics(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("a", 1)
	assert.Panics(t, func() {
		reg.Register("a", 2)
	})
}
