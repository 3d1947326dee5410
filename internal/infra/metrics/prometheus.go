package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScansProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deepfake_scans_processed_total",
		Help: "Total number of scans processed, by terminal status",
	}, []string{"status"})

	ScanStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "deepfake_scan_stage_duration_seconds",
		Help:    "Duration of analysis pipeline stages",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	FramesSampledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deepfake_frames_sampled_total",
		Help: "Total number of frames pulled from the sampler across all scans",
	})

	FramesAnalyzedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deepfake_frames_analyzed_total",
		Help: "Total number of frames scored by both signal extractors",
	})

	FallbackCropsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deepfake_fallback_crops_total",
		Help: "Frames where the face locator fell back to a center crop",
	})

	VerdictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deepfake_verdicts_total",
		Help: "Final verdicts emitted, by label",
	}, []string{"verdict"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "deepfake_active_workers",
		Help: "Number of currently active workers processing scans",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deepfake_retry_total",
		Help: "Total number of message retries",
	}, []string{"attempt"})
)
