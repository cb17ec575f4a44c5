// Package stats collects pipeline metrics and reports progress.
package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all tubemap metrics. It is separate from the default
// registry so that metric files only contain pipeline metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	StageRuns = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubemap_stage_runs_total",
			Help: "Number of stage runs by result (cached, success, failure)",
		},
		[]string{"stage", "result"},
	)

	StepDuration = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tubemap_step_duration_seconds",
			Help: "Duration of the last run of a stage step",
		},
		[]string{"stage", "step"},
	)

	ParsedElements = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubemap_parsed_elements_total",
			Help: "Number of parsed OSM elements",
		},
		[]string{"kind"},
	)

	UnresolvedNodes = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "tubemap_unresolved_node_refs_total",
			Help: "Number of way node references without a parsed node",
		},
	)

	SemanticElements = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tubemap_semantic_elements",
			Help: "Number of semantic elements by category",
		},
		[]string{"category"},
	)

	ExportedRows = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubemap_exported_rows_total",
			Help: "Number of rows exported to PostGIS",
		},
		[]string{"table"},
	)
)

func RecordStage(stage, result string) {
	StageRuns.WithLabelValues(stage, result).Inc()
}

func RecordStep(stage, step string, d time.Duration) {
	StepDuration.WithLabelValues(stage, step).Set(d.Seconds())
}

// WriteFile writes all metrics in the Prometheus text format to path, e.g.
// for the node exporter textfile collector.
func WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
