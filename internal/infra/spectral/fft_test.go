package spectral

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newScorer() *Scorer {
	return NewScorer(30, 100, 160)
}

func grayImage(size int, fill func(x, y int) uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetGray(x, y, color.Gray{Y: fill(x, y)})
		}
	}
	return img
}

func TestScoreFlatImageNearZero(t *testing.T) {
	s := newScorer()

	flat := grayImage(128, func(x, y int) uint8 { return 127 })

	score := s.Score(flat)
	assert.InDelta(t, 0, score, 0.01, "constant-intensity image has no high-frequency energy")
}

func TestScoreHighFrequencyNoiseClampsHigh(t *testing.T) {
	s := newScorer()
	rng := rand.New(rand.NewSource(42))

	// Checkerboard parity with per-cell noise: bright cells in the upper
	// half of the range, dark cells in the lower half. Broadband energy
	// plus a Nyquist spike, the signature of generative upsampling. The
	// unnormalized DFT means the log-magnitude mean grows with image
	// size, so the fixture must be large enough to clear the ceiling.
	noisy := grayImage(256, func(x, y int) uint8 {
		if (x+y)%2 == 0 {
			return uint8(128 + rng.Intn(128))
		}
		return uint8(rng.Intn(128))
	})

	score := s.Score(noisy)
	assert.GreaterOrEqual(t, score, 90.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestScoreAlwaysInRange(t *testing.T) {
	s := newScorer()
	rng := rand.New(rand.NewSource(7))

	imgs := []image.Image{
		grayImage(64, func(x, y int) uint8 { return uint8(x * y % 256) }),
		grayImage(96, func(x, y int) uint8 { return uint8(rng.Intn(256)) }),
		grayImage(33, func(x, y int) uint8 { return uint8((x + y) % 2 * 255) }),
	}

	for _, img := range imgs {
		score := s.Score(img)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func TestScoreUndecodableImageReturnsZero(t *testing.T) {
	s := newScorer()

	assert.Equal(t, 0.0, s.Score(nil))
	assert.Equal(t, 0.0, s.Score(image.NewGray(image.Rect(0, 0, 0, 0))))
	assert.Equal(t, 0.0, s.Score(image.NewGray(image.Rect(0, 0, 1, 1))))
}

func TestScoreMonotonicInNoiseAmplitude(t *testing.T) {
	s := newScorer()
	rng := rand.New(rand.NewSource(99))

	low := grayImage(128, func(x, y int) uint8 { return uint8(120 + rng.Intn(4)) })
	high := grayImage(128, func(x, y int) uint8 { return uint8(rng.Intn(256)) })

	assert.LessOrEqual(t, s.Score(low), s.Score(high))
}
