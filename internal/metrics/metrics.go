// Package metrics exposes Prometheus instrumentation for the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StageRunsTotal counts stage executions by outcome. Skipped stages are
	// not counted; only stages whose collaborator actually ran.
	StageRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easysong_stage_runs_total",
			Help: "Pipeline stage executions by stage and status",
		},
		[]string{"stage", "status"},
	)

	// StageDuration observes how long each stage's collaborator took.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "easysong_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"stage"},
	)

	// LanguagesMergedTotal counts single-language translation checkpoints.
	LanguagesMergedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "easysong_languages_merged_total",
			Help: "Completed per-language translation merges",
		},
	)
)

// RecordStage records one stage execution.
func RecordStage(stage string, durationSec float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StageRunsTotal.WithLabelValues(stage, status).Inc()
	StageDuration.WithLabelValues(stage).Observe(durationSec)
}
