package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Library size gauges, refreshed on every scrape.
	songsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fnote_songs_total",
		Help: "Number of songs in the catalog.",
	})
	playlistsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fnote_playlists_total",
		Help: "Number of playlists in the catalog.",
	})
	tagsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fnote_tags_total",
		Help: "Number of tags across all categories.",
	})

	// HTTP request metrics, driven by the hosting middleware.
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fnote_http_requests_total",
		Help: "HTTP requests served, by method, route and status.",
	}, []string{"method", "route", "status"})
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fnote_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, route, status string, seconds float64) {
	requestsTotal.WithLabelValues(method, route, status).Inc()
	requestDuration.WithLabelValues(method, route).Observe(seconds)
}
