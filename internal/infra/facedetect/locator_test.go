package facedetect

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubStrategy struct {
	name string
	box  image.Rectangle
	ok   bool
	err  error
}

func (s stubStrategy) Name() string { return s.name }

func (s stubStrategy) TryDetect(frame image.Image) (image.Rectangle, bool, error) {
	return s.box, s.ok, s.err
}

type panicStrategy struct{}

func (panicStrategy) Name() string { return "panicky" }

func (panicStrategy) TryDetect(frame image.Image) (image.Rectangle, bool, error) {
	panic("detector library blew up")
}

func frame(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func TestLocateFirstSuccessWins(t *testing.T) {
	primary := stubStrategy{name: "primary", box: image.Rect(100, 100, 200, 200), ok: true}
	secondary := stubStrategy{name: "secondary", box: image.Rect(0, 0, 10, 10), ok: true}

	l := NewLocator(0.2, zap.NewNop(), primary, secondary, CenterCrop{})

	region, found := l.Locate(frame(640, 480))
	require.True(t, found)
	assert.Equal(t, "primary", region.DetectedBy)
	assert.False(t, region.Fallback)
}

func TestLocateErrorDemotesToNextStrategy(t *testing.T) {
	failing := stubStrategy{name: "failing", err: errors.New("model not loadable")}
	working := stubStrategy{name: "working", box: image.Rect(50, 50, 150, 150), ok: true}

	l := NewLocator(0.2, zap.NewNop(), failing, working, CenterCrop{})

	region, found := l.Locate(frame(640, 480))
	require.True(t, found)
	assert.Equal(t, "working", region.DetectedBy)
}

func TestLocatePanicDemotesToNextStrategy(t *testing.T) {
	working := stubStrategy{name: "working", box: image.Rect(50, 50, 150, 150), ok: true}

	l := NewLocator(0.2, zap.NewNop(), panicStrategy{}, working, CenterCrop{})

	region, found := l.Locate(frame(640, 480))
	require.True(t, found)
	assert.Equal(t, "working", region.DetectedBy)
}

func TestLocateFallbackCenterCropAlwaysFound(t *testing.T) {
	noFace := stubStrategy{name: "primary", ok: false}

	l := NewLocator(0.2, zap.NewNop(), noFace, CenterCrop{})

	region, found := l.Locate(frame(640, 480))
	require.True(t, found)
	assert.Equal(t, CenterCropName, region.DetectedBy)
	assert.True(t, region.Fallback, "callers must be able to tell fallback crops from real detections")

	// Central 50%x50%, padded by 20% per side, clamped to the frame.
	want := PadAndClamp(image.Rect(160, 120, 480, 360), image.Rect(0, 0, 640, 480), 0.2)
	assert.Equal(t, want, region.Bounds)
}

func TestLocateWithoutFallbackReportsNotFound(t *testing.T) {
	noFace := stubStrategy{name: "primary", ok: false}

	l := NewLocator(0.2, zap.NewNop(), noFace)

	_, found := l.Locate(frame(640, 480))
	assert.False(t, found)
}

func TestPadAndClamp(t *testing.T) {
	bounds := image.Rect(0, 0, 640, 480)

	t.Run("interior box grows by 20 percent per side", func(t *testing.T) {
		got := PadAndClamp(image.Rect(100, 100, 200, 200), bounds, 0.2)
		assert.Equal(t, image.Rect(80, 80, 220, 220), got)
	})

	t.Run("box at the edge clamps to frame bounds", func(t *testing.T) {
		got := PadAndClamp(image.Rect(0, 0, 100, 100), bounds, 0.2)
		assert.Equal(t, image.Rect(0, 0, 120, 120), got)
	})

	t.Run("box at the far corner clamps to frame bounds", func(t *testing.T) {
		got := PadAndClamp(image.Rect(600, 440, 640, 480), bounds, 0.2)
		assert.Equal(t, image.Rect(592, 432, 640, 480), got)
	})
}

func TestLocateCropMatchesRegionBounds(t *testing.T) {
	primary := stubStrategy{name: "primary", box: image.Rect(100, 100, 200, 200), ok: true}
	l := NewLocator(0.2, zap.NewNop(), primary)

	region, found := l.Locate(frame(640, 480))
	require.True(t, found)
	require.NotNil(t, region.Image)
	assert.Equal(t, region.Bounds.Dx(), region.Image.Bounds().Dx())
	assert.Equal(t, region.Bounds.Dy(), region.Image.Bounds().Dy())
}
