package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements the Recorder interface using Prometheus metrics.
// Each recorder owns its registry.
type PrometheusRecorder struct {
	registry      *prometheus.Registry
	runsTotal     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	fetchDuration *prometheus.HistogramVec
	anomalies     prometheus.Gauge
}

// NewPrometheusRecorder creates a new Prometheus-based metrics recorder.
func NewPrometheusRecorder() *PrometheusRecorder {
	p := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "epicast_pipeline_runs_total",
				Help: "Total number of pipeline stage runs by stage and status",
			},
			[]string{"stage", "status"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "epicast_pipeline_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "epicast_source_fetch_duration_seconds",
				Help:    "Time spent downloading an upstream table",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"metric"},
		),
		anomalies: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "epicast_anomalies_flagged",
				Help: "Number of anomalous days flagged by the last render",
			},
		),
	}

	p.registry.MustRegister(
		p.runsTotal,
		p.stageDuration,
		p.fetchDuration,
		p.anomalies,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// ObserveStage records metrics for a completed pipeline stage.
func (p *PrometheusRecorder) ObserveStage(stage string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	p.runsTotal.WithLabelValues(stage, status).Inc()
	p.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// ObserveFetch records the download time of one upstream table.
func (p *PrometheusRecorder) ObserveFetch(metric string, duration time.Duration) {
	p.fetchDuration.WithLabelValues(metric).Observe(duration.Seconds())
}

// SetAnomalies records how many days the last render flagged.
func (p *PrometheusRecorder) SetAnomalies(n int) {
	p.anomalies.Set(float64(n))
}

// Registry returns the registry the recorder's collectors live in.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
