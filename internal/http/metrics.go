package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sharevault/internal/core"
)

// Upload status labels.
const (
	UploadAccepted    = "accepted"
	UploadRejected    = "rejected"
	UploadRateLimited = "rate_limited"
	UploadFailed      = "failed"
)

// Metrics holds the service counters on a private registry so that several
// servers (and tests) can coexist in one process. It implements core.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	UploadsTotal      *prometheus.CounterVec
	AnalysesTotal     *prometheus.CounterVec
	LinksExtracted    prometheus.Histogram
	LookupsTotal      *prometheus.CounterVec
	PlaylistAddsTotal prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		UploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sharevault_uploads_total",
				Help: "Total number of transcript uploads by outcome",
			},
			[]string{"status"},
		),
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sharevault_analyses_total",
				Help: "Total number of transcript analyses",
			},
			[]string{"status"},
		),
		LinksExtracted: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sharevault_links_per_analysis",
				Help:    "Number of unique links found per analysed transcript",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		LookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sharevault_lookups_total",
				Help: "Total number of metadata lookups by provider, kind and outcome",
			},
			[]string{"provider", "kind", "status"},
		),
		PlaylistAddsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sharevault_playlist_adds_total",
				Help: "Total number of tracks appended to the curated playlist",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.UploadsTotal,
		m.AnalysesTotal,
		m.LinksExtracted,
		m.LookupsTotal,
		m.PlaylistAddsTotal,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordUpload(status string) {
	m.UploadsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordAnalysis(status string, links int) {
	m.AnalysesTotal.WithLabelValues(status).Inc()
	if status == core.AnalysisSuccess {
		m.LinksExtracted.Observe(float64(links))
	}
}

func (m *Metrics) RecordLookup(provider, kind, status string) {
	m.LookupsTotal.WithLabelValues(provider, kind, status).Inc()
}

func (m *Metrics) RecordPlaylistAdds(count int) {
	m.PlaylistAddsTotal.Add(float64(count))
}
