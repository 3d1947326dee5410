package usecase

import (
	"gonum.org/v1/gonum/stat"

	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/entity"
)

// FusionConfig holds the blend weights and decision threshold for turning
// per-frame evidence into a verdict. AIWeight applies to the learned
// probability after scaling to [0,100]; FFTWeight applies to the anomaly
// score, which already lives on that scale.
type FusionConfig struct {
	AIWeight          float64
	FFTWeight         float64
	DeepfakeThreshold float64
	MaxConfidence     float64
}

// FuseScores reduces the per-frame evidence to a single verdict and
// confidence. With no analyzed frames the scan is UNCERTAIN at zero
// confidence. The threshold is exclusive: a confidence exactly at it
// reads REAL.
func FuseScores(frames []entity.FrameResult, cfg FusionConfig) (entity.Verdict, float64) {
	if len(frames) == 0 {
		return entity.VerdictUncertain, 0
	}

	aiScores := make([]float64, len(frames))
	fftScores := make([]float64, len(frames))
	for i, f := range frames {
		aiScores[i] = f.AIProbability
		fftScores[i] = f.FFTAnomaly
	}

	avgAI := stat.Mean(aiScores, nil)
	avgFFT := stat.Mean(fftScores, nil)

	confidence := avgAI*100*cfg.AIWeight + avgFFT*cfg.FFTWeight
	if confidence < 0 {
		confidence = 0
	}
	if confidence > cfg.MaxConfidence {
		confidence = cfg.MaxConfidence
	}

	if confidence > cfg.DeepfakeThreshold {
		return entity.VerdictDeepfake, confidence
	}
	return entity.VerdictReal, confidence
}
