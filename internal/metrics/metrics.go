package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/51721198/gomoku-battle/internal/core"
)

// Metrics holds the process collectors. It satisfies core.StatsRecorder.
type Metrics struct {
	searches       prometheus.Counter
	searchDuration prometheus.Histogram
	nodes          prometheus.Counter
	cutoffs        prometheus.Counter
	cacheEvents    *prometheus.CounterVec
	moves          *prometheus.CounterVec
	results        *prometheus.CounterVec
	clients        prometheus.Gauge
}

var _ core.StatsRecorder = (*Metrics)(nil)

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		searches: factory.NewCounter(prometheus.CounterOpts{
			Name: "gomoku_searches_total",
			Help: "Completed move choices",
		}),
		searchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gomoku_search_duration_seconds",
			Help:    "Wall time of one move choice",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		nodes: factory.NewCounter(prometheus.CounterOpts{
			Name: "gomoku_search_nodes_total",
			Help: "Search nodes visited",
		}),
		cutoffs: factory.NewCounter(prometheus.CounterOpts{
			Name: "gomoku_search_cutoffs_total",
			Help: "Alpha-beta cutoffs",
		}),
		cacheEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gomoku_search_cache_total",
			Help: "Search cache probes, hits and stores",
		}, []string{"event"}),
		moves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gomoku_moves_total",
			Help: "Moves applied to matches by stone",
		}, []string{"stone"}),
		results: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gomoku_results_total",
			Help: "Finished matches by outcome",
		}, []string{"status"}),
		clients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gomoku_ws_clients",
			Help: "Connected websocket clients",
		}),
	}
}

func (m *Metrics) RecordSearch(stats core.SearchStats, elapsed time.Duration) {
	m.searches.Inc()
	m.searchDuration.Observe(elapsed.Seconds())
	m.nodes.Add(float64(stats.Nodes))
	m.cutoffs.Add(float64(stats.Cutoffs))
	m.cacheEvents.WithLabelValues("probe").Add(float64(stats.CacheProbes))
	m.cacheEvents.WithLabelValues("hit").Add(float64(stats.CacheHits))
	m.cacheEvents.WithLabelValues("store").Add(float64(stats.CacheStores))
}

func (m *Metrics) RecordMove(stone core.Stone) {
	m.moves.WithLabelValues(stone.String()).Inc()
}

func (m *Metrics) RecordResult(status string) {
	m.results.WithLabelValues(status).Inc()
}

func (m *Metrics) ClientConnected() {
	m.clients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	m.clients.Dec()
}
