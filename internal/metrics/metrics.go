// Package metrics exposes analysis counters in the Prometheus format.
package metrics

import (
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"sharpfix/internal/diag"
)

const namespace = "sharpfix"

// Metrics groups the collectors of one run. A nil *Metrics records nothing,
// so callers never need to check whether metrics are enabled.
type Metrics struct {
	registry *prometheus.Registry

	ruleChecks   *prometheus.CounterVec
	ruleFailures *prometheus.CounterVec
	diagnostics  *prometheus.CounterVec
	fixes        *prometheus.CounterVec
	files        prometheus.Counter
	fileDuration prometheus.Histogram
}

// New registers every collector on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ruleChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_checks_total",
			Help:      "Rule invocations by rule code.",
		}, []string{"rule"}),
		ruleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_failures_total",
			Help:      "Rule invocations that panicked or returned an error.",
		}, []string{"rule"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Reported diagnostics by rule code and severity.",
		}, []string{"rule", "severity"}),
		fixes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fixes_total",
			Help:      "Fix applications by rule code and outcome.",
		}, []string{"rule", "outcome"}),
		files: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_analyzed_total",
			Help:      "Analysed source files.",
		}),
		fileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_analysis_seconds",
			Help:      "Wall time of parse, bind and rule walk per file.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
	m.registry.MustRegister(m.ruleChecks, m.ruleFailures, m.diagnostics, m.fixes, m.files, m.fileDuration)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteText dumps every collector in the Prometheus text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) RuleChecked(code diag.Code) {
	if m == nil {
		return
	}
	m.ruleChecks.WithLabelValues(code.ID()).Inc()
}

func (m *Metrics) RuleFailed(code diag.Code) {
	if m == nil {
		return
	}
	m.ruleFailures.WithLabelValues(code.ID()).Inc()
}

func (m *Metrics) Diagnostics(ds []diag.Diagnostic) {
	if m == nil {
		return
	}
	for i := range ds {
		if ds[i].Internal {
			continue
		}
		m.diagnostics.WithLabelValues(ds[i].Code.ID(), diag.SeverityLabel(ds[i].Severity)).Inc()
	}
}

// FixOutcome records a fix application; outcome is "applied" or the reason it
// was skipped.
func (m *Metrics) FixOutcome(code diag.Code, outcome string) {
	if m == nil {
		return
	}
	m.fixes.WithLabelValues(code.ID(), outcome).Inc()
}

func (m *Metrics) FileAnalyzed(d time.Duration) {
	if m == nil {
		return
	}
	m.files.Inc()
	m.fileDuration.Observe(d.Seconds())
}
