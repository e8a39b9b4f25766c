package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics of the expense feed.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	fetchDuration    *prometheus.HistogramVec
	fetchErrors      *prometheus.CounterVec
	staleResponses   prometheus.Counter
	pagesLoaded      *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	mutations        *prometheus.CounterVec
	itemsAccumulated prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// feed metrics in it. A private registry lets tests build as many as
// they like.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "feed_fetch_duration_seconds",
				Help:    "Duration of source fetches by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		fetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feed_fetch_errors_total",
				Help: "Total failed fetches by source.",
			},
			[]string{"source"},
		),
		staleResponses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "feed_stale_responses_total",
				Help: "Responses discarded because a newer reset superseded them.",
			},
		),
		pagesLoaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feed_pages_loaded_total",
				Help: "Pages merged into the feed, by mode (reset or append).",
			},
			[]string{"mode"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feed_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feed_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feed_mutations_total",
				Help: "Total store mutations by entity and operation.",
			},
			[]string{"entity", "op"},
		),
		itemsAccumulated: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "feed_items_accumulated",
				Help: "Expenses currently held by the feed.",
			},
		),
	}
}

// RecordFetchDuration records the duration of a fetch.
func (m *Metrics) RecordFetchDuration(operation string, d time.Duration) {
	m.fetchDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrFetchError increments the fetch error counter.
func (m *Metrics) IncrFetchError(source string) {
	m.fetchErrors.WithLabelValues(source).Inc()
}

// IncrStaleResponse counts a discarded response.
func (m *Metrics) IncrStaleResponse() {
	m.staleResponses.Inc()
}

// IncrPageLoaded counts a merged page. mode is "reset" or "append".
func (m *Metrics) IncrPageLoaded(mode string) {
	m.pagesLoaded.WithLabelValues(mode).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrMutation counts a successful mutation, e.g. ("expense", "delete").
func (m *Metrics) IncrMutation(entity, op string) {
	m.mutations.WithLabelValues(entity, op).Inc()
}

// SetItemsAccumulated records the size of the accumulated set.
func (m *Metrics) SetItemsAccumulated(n int) {
	m.itemsAccumulated.Set(float64(n))
}

// Snapshot is a point-in-time read of the feed counters.
type Snapshot struct {
	PagesReset       float64 `json:"pagesReset"`
	PagesAppended    float64 `json:"pagesAppended"`
	StaleResponses   float64 `json:"staleResponses"`
	FetchErrors      float64 `json:"fetchErrors"`
	CategoryHitRate  float64 `json:"categoryHitRate"`
	ItemsAccumulated float64 `json:"itemsAccumulated"`
}

// Snapshot gathers the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	hits := getCounterValue(m.cacheHits, "categories")
	misses := getCounterValue(m.cacheMisses, "categories")
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return Snapshot{
		PagesReset:       getCounterValue(m.pagesLoaded, "reset"),
		PagesAppended:    getCounterValue(m.pagesLoaded, "append"),
		StaleResponses:   metricValue(m.staleResponses),
		FetchErrors:      getCounterValue(m.fetchErrors, "expenses") + getCounterValue(m.fetchErrors, "categories"),
		CategoryHitRate:  hitRate,
		ItemsAccumulated: metricValue(m.itemsAccumulated),
	}
}

// getCounterValue extracts the current value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return metricValue(cv.WithLabelValues(label))
}

func metricValue(c prometheus.Metric) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	switch {
	case m.Counter != nil && m.Counter.Value != nil:
		return *m.Counter.Value
	case m.Gauge != nil && m.Gauge.Value != nil:
		return *m.Gauge.Value
	}
	return 0
}
