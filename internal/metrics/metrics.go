// Package metrics records build counters for rcsg in Prometheus format.
//
// A nil *Metrics is valid and records nothing, so callers never need to
// check whether metrics are enabled.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Build stages used as the "stage" label of build_errors_total.
const (
	StageCompile = "compile"
	StageExecute = "execute"
	StageRender  = "render"
	StageOutput  = "output"
	StageCopy    = "copy"

	// StageCanceled marks builds stopped by context cancellation.
	StageCanceled = "canceled"
)

// Config configures the metric collectors.
type Config struct {
	// Namespace prefixes every metric name (default: "rcsg").
	Namespace string

	// Registry receives the collectors. Default: a fresh registry, so
	// several builders in one process never collide.
	Registry *prometheus.Registry

	// Buckets are the build duration histogram buckets.
	Buckets []float64
}

// Metrics holds the build collectors.
type Metrics struct {
	registry *prometheus.Registry

	templatesCompiled prometheus.Counter
	pagesRendered     prometheus.Counter
	assetsCopied      prometheus.Counter
	buildErrors       *prometheus.CounterVec
	buildDuration     prometheus.Histogram
	lastBuildSuccess  prometheus.Gauge
}

// New registers the build collectors.
func New(config Config) *Metrics {
	if config.Namespace == "" {
		config.Namespace = "rcsg"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	if len(config.Buckets) == 0 {
		config.Buckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		registry: config.Registry,

		templatesCompiled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "templates_compiled_total",
			Help:      "Total number of templates compiled into modules",
		}),

		pagesRendered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "pages_rendered_total",
			Help:      "Total number of HTML pages rendered",
		}),

		assetsCopied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "assets_copied_total",
			Help:      "Total number of static files copied to the output directory",
		}),

		buildErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "build_errors_total",
			Help:      "Total number of failed builds by stage",
		}, []string{"stage"}),

		buildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "build_duration_seconds",
			Help:      "Full build duration in seconds",
			Buckets:   config.Buckets,
		}),

		lastBuildSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "last_build_success",
			Help:      "1 if the most recent build succeeded, 0 otherwise",
		}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// TemplateCompiled records one compiled template.
func (m *Metrics) TemplateCompiled() {
	if m == nil {
		return
	}
	m.templatesCompiled.Inc()
}

// PageRendered records one written HTML page.
func (m *Metrics) PageRendered() {
	if m == nil {
		return
	}
	m.pagesRendered.Inc()
}

// AssetCopied records one copied static file.
func (m *Metrics) AssetCopied() {
	if m == nil {
		return
	}
	m.assetsCopied.Inc()
}

// BuildFinished records the outcome of a build. stage is ignored when
// the build succeeded.
func (m *Metrics) BuildFinished(d time.Duration, stage string, ok bool) {
	if m == nil {
		return
	}
	m.buildDuration.Observe(d.Seconds())
	if ok {
		m.lastBuildSuccess.Set(1)
		return
	}
	m.lastBuildSuccess.Set(0)
	m.buildErrors.WithLabelValues(stage).Inc()
}

// WriteTextfile writes every collector to path in the text exposition
// format, for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
