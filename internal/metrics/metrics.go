package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipsight_frames_extracted_total",
		Help: "Total number of frames extracted across all runs",
	})

	InferenceCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipsight_inference_calls_total",
		Help: "Total number of inference calls, by outcome",
	}, []string{"outcome"})

	InferenceRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipsight_inference_retries_total",
		Help: "Total number of inference retries",
	})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clipsight_stage_duration_seconds",
		Help:    "Duration of each pipeline stage",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	ReportCoverage = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clipsight_report_coverage",
		Help:    "Fraction of frames successfully analyzed per run",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})
)

// Inference call outcomes.
const (
	OutcomeOk        = "ok"
	OutcomeTransient = "transient"
	OutcomePermanent = "permanent"
)
