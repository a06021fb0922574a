package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadkit/dataloader/cache"
)

func TestLRU(t *testing.T) {
	t.Parallel()

	c, err := cache.NewLRU[string, int](2)
	require.NoError(t, err)

	c.Insert("a", 1)
	c.Insert("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	removed, ok := c.Remove("a")
	require.True(t, ok)
	assert.Equal(t, 1, removed)

	_, ok = c.Get("a")
	assert.False(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
}
