package port

import (
	"context"
	"image"
)

// SampledFrame is one decoded frame together with its position in the
// sampling sequence. Transient: it never outlives the pipeline loop.
type SampledFrame struct {
	Image     image.Image
	Timestamp float64
	Index     int
}

// FrameSequence is a lazy, finite, non-restartable sequence of sampled
// frames. Next returns (nil, nil) once the source is exhausted. Close
// releases all transient decode artifacts and is safe on every exit path.
type FrameSequence interface {
	Next(ctx context.Context) (*SampledFrame, error)
	Close() error
}

// FrameSampler opens a video container for stride-based sampling. An error
// from Open means the container cannot be decoded at all and is fatal for
// the scan.
type FrameSampler interface {
	Open(ctx context.Context, videoPath string) (FrameSequence, error)
}
