// Package cache provides bounded and expiring Cache implementations for
// dataloader.Loader, for deployments where the default unbounded
// dataloader.InMemoryCache holds onto every key it has ever seen for the
// life of the process.
package cache

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/loadkit/dataloader"
)

// LRU adapts a hashicorp/golang-lru ARCCache into a dataloader.Cache[K, V].
// Values are stored as interface{} internally and type-asserted back on
// Get, the usual tradeoff for sitting a non-generic library behind a
// generic interface.
type LRU[K comparable, V any] struct {
	c *lru.ARCCache
}

var _ dataloader.Cache[string, int] = (*LRU[string, int])(nil)

// NewLRU constructs an LRU-backed cache holding at most size entries.
func NewLRU[K comparable, V any](size int) (*LRU[K, V], error) {
	c, err := lru.NewARC(size)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{c: c}, nil
}

// Get returns the value at key, if present.
func (l *LRU[K, V]) Get(key K) (V, bool) {
	var zero V
	v, ok := l.c.Get(key)
	if !ok {
		return zero, false
	}
	return v.(V), true
}

// Insert stores value at key, evicting an entry chosen by the ARC policy if
// the cache is at capacity.
func (l *LRU[K, V]) Insert(key K, value V) {
	l.c.Add(key, value)
}

// Remove deletes key from the cache, returning the removed value if it was
// present.
func (l *LRU[K, V]) Remove(key K) (V, bool) {
	v, ok := l.Get(key)
	if ok {
		l.c.Remove(key)
	}
	return v, ok
}

// Clear empties the cache.
func (l *LRU[K, V]) Clear() {
	l.c.Purge()
}
