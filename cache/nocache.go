package cache

import "github.com/loadkit/dataloader"

// NoCache implements dataloader.Cache[K, V] with every method a no-op. It is
// useful when a caller wants Loader's dedup-and-batch behavior for the keys
// in flight during one coordination window but no memoization beyond that.
type NoCache[K comparable, V any] struct{}

var _ dataloader.Cache[string, int] = NoCache[string, int]{}

// Get always reports a miss.
func (NoCache[K, V]) Get(K) (V, bool) {
	var zero V
	return zero, false
}

// Insert is a no-op.
func (NoCache[K, V]) Insert(K, V) {}

// Remove always reports nothing removed.
func (NoCache[K, V]) Remove(K) (V, bool) {
	var zero V
	return zero, false
}

// Clear is a no-op.
func (NoCache[K, V]) Clear() {}
