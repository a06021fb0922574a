package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus is a Collector backed by prometheus client_golang metrics.
//
// Callers are expected to register the embedded metrics with a
// prometheus.Registerer themselves (via Collectors) so they control the
// namespace/subsystem and avoid double registration across multiple
// loaders.
type Prometheus struct {
	BatchCalls    prometheus.Counter
	KeysRequested prometheus.Counter
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	NotFound      prometheus.Counter
	PendingKeys   prometheus.Gauge
}

var _ Collector = (*Prometheus)(nil)

// NewPrometheus builds a Prometheus collector with metrics named
// "<namespace>_dataloader_<counter>".
func NewPrometheus(namespace string) *Prometheus {
	return &Prometheus{
		BatchCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "dataloader_batch_calls_total",
			Help: "Number of batch function dispatches.",
		}),
		KeysRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "dataloader_keys_requested_total",
			Help: "Number of keys requested via Load/LoadMany.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "dataloader_cache_hits_total",
			Help: "Number of keys served from the cache without a dispatch.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "dataloader_cache_misses_total",
			Help: "Number of keys that required a batch dispatch.",
		}),
		NotFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "dataloader_not_found_total",
			Help: "Number of keys the batch function omitted.",
		}),
		PendingKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "dataloader_pending_keys",
			Help: "Current size of the pending-key set.",
		}),
	}
}

// Collectors returns every prometheus.Collector so callers can pass them to
// a Registerer.MustRegister in one call.
func (p *Prometheus) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		p.BatchCalls, p.KeysRequested, p.CacheHits, p.CacheMisses, p.NotFound, p.PendingKeys,
	}
}

func (p *Prometheus) IncBatchCalls()         { p.BatchCalls.Inc() }
func (p *Prometheus) AddKeysRequested(n int) { p.KeysRequested.Add(float64(n)) }
func (p *Prometheus) IncCacheHits()          { p.CacheHits.Inc() }
func (p *Prometheus) IncCacheMisses()        { p.CacheMisses.Inc() }
func (p *Prometheus) IncNotFound()           { p.NotFound.Inc() }
func (p *Prometheus) SetPendingKeys(n int)   { p.PendingKeys.Set(float64(n)) }
