package cache

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/loadkit/dataloader"
)

// TTL adapts patrickmn/go-cache into a dataloader.Cache[K, V] whose entries
// expire after a fixed duration. go-cache's own key type is string, so keys
// are formatted with fmt.Sprintf("%v", key) to generalize to an arbitrary
// comparable K.
type TTL[K comparable, V any] struct {
	c *gocache.Cache
}

var _ dataloader.Cache[string, int] = (*TTL[string, int])(nil)

// NewTTL constructs a TTL cache whose entries expire after expiration and
// are swept for removal every cleanupInterval.
func NewTTL[K comparable, V any](expiration, cleanupInterval time.Duration) *TTL[K, V] {
	return &TTL[K, V]{c: gocache.New(expiration, cleanupInterval)}
}

func ttlKey[K comparable](key K) string {
	return fmt.Sprintf("%v", key)
}

// Get returns the value at key, if present and not expired.
func (t *TTL[K, V]) Get(key K) (V, bool) {
	var zero V
	v, ok := t.c.Get(ttlKey(key))
	if !ok {
		return zero, false
	}
	return v.(V), true
}

// Insert stores value at key using the cache's default expiration.
func (t *TTL[K, V]) Insert(key K, value V) {
	t.c.SetDefault(ttlKey(key), value)
}

// Remove deletes key from the cache, returning the removed value if it was
// present and not expired.
func (t *TTL[K, V]) Remove(key K) (V, bool) {
	v, ok := t.Get(key)
	if ok {
		t.c.Delete(ttlKey(key))
	}
	return v, ok
}

// Clear empties the cache.
func (t *TTL[K, V]) Clear() {
	t.c.Flush()
}
