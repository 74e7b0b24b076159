// Package metrics exposes the outcome of a matching run as Prometheus metrics
// and writes them to a node_exporter textfile.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/otherjamesbrown/matchmaker/pkg/matching"
)

// Namespace prefixes every metric name.
const Namespace = "matchmaker"

// ResultCollector reports the counts of a matching result. It implements
// prometheus.Collector and reads the result on each scrape, so it can be
// registered before the run finishes.
type ResultCollector struct {
	mu     sync.RWMutex
	result *matching.Result

	responses      *prometheus.Desc
	eventNames     *prometheus.Desc
	participants   *prometheus.Desc
	nonRespondents *prometheus.Desc
	unmatched      *prometheus.Desc
	mutualPairs    *prometheus.Desc
	diagnostics    *prometheus.Desc
}

// NewResultCollector creates a collector. The source is used as a constant
// label to distinguish exports.
func NewResultCollector(namespace, source string) *ResultCollector {
	constLabels := prometheus.Labels{"source": source}

	return &ResultCollector{
		responses: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "survey", "responses"),
			"Number of response rows read",
			nil,
			constLabels,
		),
		eventNames: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "survey", "event_names"),
			"Number of names offered by the name-finder columns",
			nil,
			constLabels,
		),
		participants: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "match", "participants"),
			"Number of respondents accepted as participants",
			nil,
			constLabels,
		),
		nonRespondents: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "match", "non_respondents"),
			"Number of event names with no response",
			nil,
			constLabels,
		),
		unmatched: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "match", "unmatched"),
			"Number of participants with no mutual match",
			nil,
			constLabels,
		),
		mutualPairs: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "match", "mutual_pairs"),
			"Number of unordered mutual matches",
			nil,
			constLabels,
		),
		diagnostics: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "match", "diagnostics"),
			"Number of row diagnostics by kind",
			[]string{"kind"},
			constLabels,
		),
	}
}

// SetResult replaces the result reported on the next scrape.
func (c *ResultCollector) SetResult(res *matching.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = res
}

// Describe sends all metric descriptors to the channel.
func (c *ResultCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.responses
	ch <- c.eventNames
	ch <- c.participants
	ch <- c.nonRespondents
	ch <- c.unmatched
	ch <- c.mutualPairs
	ch <- c.diagnostics
}

// Collect sends the current result counts as metrics.
func (c *ResultCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	res := c.result
	c.mu.RUnlock()
	if res == nil {
		return
	}

	gauge := func(desc *prometheus.Desc, v int, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(v), labels...)
	}
	gauge(c.responses, res.Responses)
	gauge(c.eventNames, len(res.EventNames))
	gauge(c.participants, len(res.Participants))
	gauge(c.nonRespondents, len(res.NonRespondents))
	gauge(c.unmatched, len(res.Unmatched))
	gauge(c.mutualPairs, res.MutualPairs)
	for _, kind := range DiagnosticKinds {
		gauge(c.diagnostics, res.Diagnostics.Count(kind), string(kind))
	}
}

// DiagnosticKinds are reported even when zero.
var DiagnosticKinds = []matching.DiagnosticKind{
	matching.KindUnknownRespondent,
	matching.KindBlankName,
	matching.KindMalformedContact,
	matching.KindDuplicateRespondent,
}

// RunMetrics holds the metrics of one CLI invocation.
type RunMetrics struct {
	registry *prometheus.Registry
	results  *ResultCollector

	StageSeconds    *prometheus.GaugeVec
	LastRunSeconds  prometheus.Gauge
	LastRunSuccess  prometheus.Gauge
	LastRunUnixTime prometheus.Gauge
}

// NewRunMetrics creates a dedicated registry holding the result collector and
// the run timing metrics.
func NewRunMetrics(source string) *RunMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &RunMetrics{
		registry: reg,
		results:  NewResultCollector(Namespace, source),
		StageSeconds: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "stage_duration_seconds",
				Help:      "Wall time spent in each stage of the last run",
			},
			[]string{"stage"},
		),
		LastRunSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		LastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run completed, 0 otherwise",
		}),
		LastRunUnixTime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
	reg.MustRegister(m.results)
	return m
}

// Registry returns the registry backing the metrics.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStage records how long a stage took.
func (m *RunMetrics) ObserveStage(stage string, d time.Duration) {
	m.StageSeconds.WithLabelValues(stage).Set(d.Seconds())
}

// ObserveResult records a finished run.
func (m *RunMetrics) ObserveResult(res *matching.Result, d time.Duration, finished time.Time) {
	m.results.SetResult(res)
	m.LastRunSeconds.Set(d.Seconds())
	m.LastRunUnixTime.Set(float64(finished.Unix()))
	if res != nil {
		m.LastRunSuccess.Set(1)
	} else {
		m.LastRunSuccess.Set(0)
	}
}

// WriteTextfile writes the registry in the text exposition format. The file
// is written atomically for the node_exporter textfile collector.
func (m *RunMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
