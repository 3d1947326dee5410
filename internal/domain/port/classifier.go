package port

import (
	"context"
	"image"
)

// Classification is the top-1 result of an image classification call.
type Classification struct {
	Label      string
	Confidence float64
}

// ImageClassifier is the injected learned-classifier capability. It may be
// absent at runtime (nil dependency); absence is a supported degraded mode,
// not a startup failure.
type ImageClassifier interface {
	Classify(ctx context.Context, img image.Image) (Classification, error)
}

// AnomalyScorer is the analytic frequency-domain signal over a cropped face
// image. Score is pure and total: it returns a value in [0,100] and 0 for
// images it cannot analyze.
type AnomalyScorer interface {
	Score(img image.Image) float64
}
