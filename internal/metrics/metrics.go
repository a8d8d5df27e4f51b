package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AddressesResolvedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resolver_addresses_total",
		Help: "Addresses resolved, by deepest matched level (province, city, district, none)",
	}, []string{"level"})
	ResolveDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resolver_resolve_duration_ms",
		Help:    "Resolve call duration in milliseconds, by mode (single, batch, table, job)",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000, 30000},
	}, []string{"mode"})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resolver_cache_hits_total",
		Help: "Result cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resolver_cache_misses_total",
		Help: "Result cache misses",
	})
	TableRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resolver_table_rows_total",
		Help: "Rows processed by table transforms",
	})
	JobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resolver_jobs_total",
		Help: "Batch jobs by final status",
	}, []string{"status"})
	JobsRunning = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "resolver_jobs_running",
		Help: "Batch jobs currently running",
	})
	GazetteerRegions = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "resolver_gazetteer_regions",
		Help: "Regions loaded in the gazetteer, by level",
	}, []string{"level"})
)

func init() {
	prometheus.MustRegister(AddressesResolvedTotal)
	prometheus.MustRegister(ResolveDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(TableRowsTotal)
	prometheus.MustRegister(JobsTotal)
	prometheus.MustRegister(JobsRunning)
	prometheus.MustRegister(GazetteerRegions)
}

// ObserveSince ghi thời gian xử lý (ms) cho mode
func ObserveSince(mode string, start time.Time) {
	ResolveDurationMs.WithLabelValues(mode).Observe(float64(time.Since(start).Microseconds()) / 1000)
}

// Handler trả về handler expose metrics tại /metrics
func Handler() http.Handler { return promhttp.Handler() }
