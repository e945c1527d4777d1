package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes the dashboard pipeline as Prometheus metrics.
// A nil *Recorder is valid and records nothing (METRICS_ENABLED=false).
// ⭐ SSOT: 메트릭 이름/라벨은 여기서만 정의
type Recorder struct {
	registry *prometheus.Registry

	fetchDuration *prometheus.HistogramVec
	fetchErrors   *prometheus.CounterVec
	rowsFetched   *prometheus.GaugeVec
	sections      *prometheus.CounterVec
	buildDuration prometheus.Histogram
	lastBuild     prometheus.Gauge
	cacheLookups  *prometheus.CounterVec
	streamClients prometheus.Gauge
}

// New creates a recorder on its own registry, with Go and process collectors
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "snapboard_table_fetch_duration_seconds",
				Help:    "Duration of one full table read",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"table"},
		),
		fetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapboard_table_fetch_errors_total",
				Help: "Total number of failed table reads",
			},
			[]string{"table"},
		),
		rowsFetched: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "snapboard_table_rows",
				Help: "Rows returned by the last successful read of a table",
			},
			[]string{"table"},
		),
		sections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapboard_sections_total",
				Help: "Dashboard sections built, labelled by section and status",
			},
			[]string{"section", "status"},
		),
		buildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "snapboard_dashboard_build_duration_seconds",
			Help:    "End-to-end duration of one dashboard build",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		lastBuild: factory.NewGauge(prometheus.GaugeOpts{
			Name: "snapboard_dashboard_last_build_timestamp_seconds",
			Help: "Unix time of the last completed dashboard build",
		}),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapboard_cache_lookups_total",
				Help: "Dashboard cache lookups, labelled by result (hit, miss, error)",
			},
			[]string{"result"},
		),
		streamClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "snapboard_stream_clients",
			Help: "Connected websocket dashboard subscribers",
		}),
	}
}

// ObserveFetch records one table read
func (r *Recorder) ObserveFetch(table string, d time.Duration, rows int, err error) {
	if r == nil {
		return
	}
	r.fetchDuration.WithLabelValues(table).Observe(d.Seconds())
	if err != nil {
		r.fetchErrors.WithLabelValues(table).Inc()
		return
	}
	r.rowsFetched.WithLabelValues(table).Set(float64(rows))
}

// ObserveSection counts one built section by its status ("ok" for success)
func (r *Recorder) ObserveSection(section, status string) {
	if r == nil {
		return
	}
	r.sections.WithLabelValues(section, status).Inc()
}

// ObserveBuild records a completed dashboard build
func (r *Recorder) ObserveBuild(d time.Duration, finishedAt time.Time) {
	if r == nil {
		return
	}
	r.buildDuration.Observe(d.Seconds())
	r.lastBuild.Set(float64(finishedAt.Unix()))
}

// ObserveCache counts a cache lookup result: hit, miss or error
func (r *Recorder) ObserveCache(result string) {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// SetStreamClients reports the current number of websocket subscribers
func (r *Recorder) SetStreamClients(n int) {
	if r == nil {
		return
	}
	r.streamClients.Set(float64(n))
}

// Registry returns the underlying registry (tests, extra collectors)
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
