package metrics

import "sync/atomic"

// Atomic is a Collector whose every counter is a lock-free int64. Loaders
// do not use it unless it is installed with WithCollector or
// WithUncachedCollector; their default collector records nothing.
type Atomic struct {
	batchCalls    int64
	keysRequested int64
	cacheHits     int64
	cacheMisses   int64
	notFound      int64
	pendingKeys   int64
}

var _ Collector = (*Atomic)(nil)

// NewAtomic returns a ready-to-use Atomic collector.
func NewAtomic() *Atomic { return &Atomic{} }

func (a *Atomic) IncBatchCalls()         { atomic.AddInt64(&a.batchCalls, 1) }
func (a *Atomic) AddKeysRequested(n int) { atomic.AddInt64(&a.keysRequested, int64(n)) }
func (a *Atomic) IncCacheHits()          { atomic.AddInt64(&a.cacheHits, 1) }
func (a *Atomic) IncCacheMisses()        { atomic.AddInt64(&a.cacheMisses, 1) }
func (a *Atomic) IncNotFound()           { atomic.AddInt64(&a.notFound, 1) }
func (a *Atomic) SetPendingKeys(n int)   { atomic.StoreInt64(&a.pendingKeys, int64(n)) }

// Snapshot returns a point-in-time copy of every counter.
func (a *Atomic) Snapshot() Snapshot {
	return Snapshot{
		BatchCalls:    atomic.LoadInt64(&a.batchCalls),
		KeysRequested: atomic.LoadInt64(&a.keysRequested),
		CacheHits:     atomic.LoadInt64(&a.cacheHits),
		CacheMisses:   atomic.LoadInt64(&a.cacheMisses),
		NotFound:      atomic.LoadInt64(&a.notFound),
		PendingKeys:   atomic.LoadInt64(&a.pendingKeys),
	}
}
