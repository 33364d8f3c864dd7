// Package metrics defines the Prometheus collectors used across the
// application and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the monitor.
type Metrics struct {
	CyclesTotal            prometheus.Counter
	FilingsProcessedTotal  prometheus.Counter
	DisclosuresFoundTotal  prometheus.Counter
	NotificationsSentTotal *prometheus.CounterVec
	SECRequestsTotal       prometheus.Counter
	SECCacheHitsTotal      prometheus.Counter
	SECRetriesTotal        prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "monitor_cycles_total",
				Help: "Total number of completed polling cycles.",
			},
		),
		FilingsProcessedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "filings_processed_total",
				Help: "Total number of new filings fetched and classified.",
			},
		),
		DisclosuresFoundTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "disclosures_found_total",
				Help: "Total number of confirmed cybersecurity disclosures.",
			},
		),
		NotificationsSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_sent_total",
				Help: "Total notifications sent by channel and status.",
			},
			[]string{"channel", "status"},
		),
		SECRequestsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sec_requests_total",
				Help: "Total HTTP requests issued against SEC endpoints.",
			},
		),
		SECCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sec_cache_hits_total",
				Help: "Total SEC requests served from the on-disk cache.",
			},
		),
		SECRetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sec_retries_total",
				Help: "Total retried SEC requests.",
			},
		),
	}

	prometheus.MustRegister(
		m.CyclesTotal,
		m.FilingsProcessedTotal,
		m.DisclosuresFoundTotal,
		m.NotificationsSentTotal,
		m.SECRequestsTotal,
		m.SECCacheHitsTotal,
		m.SECRetriesTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
