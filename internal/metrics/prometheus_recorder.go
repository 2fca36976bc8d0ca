package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration    *prom.HistogramVec
	buildDuration    prom.Histogram
	stageResults     *prom.CounterVec
	buildOutcome     *prom.CounterVec
	pagesRendered    prom.Counter
	artifactsWritten prom.Counter
	artifactsPruned  prom.Counter
	imageTransforms  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitegen",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitegen",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitegen",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitegen",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		pagesRendered: prom.NewCounter(prom.CounterOpts{
			Namespace: "sitegen",
			Name:      "pages_rendered_total",
			Help:      "Content pages rendered across builds",
		}),
		artifactsWritten: prom.NewCounter(prom.CounterOpts{
			Namespace: "sitegen",
			Name:      "artifacts_written_total",
			Help:      "Output artifacts written (unchanged files skipped)",
		}),
		artifactsPruned: prom.NewCounter(prom.CounterOpts{
			Namespace: "sitegen",
			Name:      "artifacts_pruned_total",
			Help:      "Orphaned output paths deleted by the reconciler",
		}),
		imageTransforms: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitegen",
			Name:      "image_transforms_total",
			Help:      "Image transform requests by cache outcome",
		}, []string{"cache"}),
	}

	reg.MustRegister(
		pr.stageDuration,
		pr.buildDuration,
		pr.stageResults,
		pr.buildOutcome,
		pr.pagesRendered,
		pr.artifactsWritten,
		pr.artifactsPruned,
		pr.imageTransforms,
	)
	return pr
}

func (pr *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	pr.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	pr.buildDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	pr.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (pr *PrometheusRecorder) IncBuildOutcome(outcome string) {
	pr.buildOutcome.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) AddPagesRendered(n int) {
	pr.pagesRendered.Add(float64(n))
}

func (pr *PrometheusRecorder) AddArtifactsWritten(n int) {
	pr.artifactsWritten.Add(float64(n))
}

func (pr *PrometheusRecorder) AddArtifactsPruned(n int) {
	pr.artifactsPruned.Add(float64(n))
}

func (pr *PrometheusRecorder) IncImageTransform(cacheHit bool) {
	label := "miss"
	if cacheHit {
		label = "hit"
	}
	pr.imageTransforms.WithLabelValues(label).Inc()
}
