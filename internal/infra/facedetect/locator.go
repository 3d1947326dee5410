// Package facedetect locates the primary face in a frame through an
// ordered cascade of detector strategies. The cascade degrades instead of
// failing: a strategy error demotes to the next strategy, and the final
// center-crop strategy always succeeds.
package facedetect

import (
	"fmt"
	"image"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/port"
)

// Strategy is one face-detection capability. TryDetect reports the best
// bounding box it found; ok=false means "ran fine, saw no face".
type Strategy interface {
	Name() string
	TryDetect(frame image.Image) (box image.Rectangle, ok bool, err error)
}

type Locator struct {
	strategies []Strategy
	padding    float64
	logger     *zap.Logger
}

// NewLocator assembles the cascade in priority order. padding is the
// fraction of box width/height added on each side before cropping.
func NewLocator(padding float64, logger *zap.Logger, strategies ...Strategy) *Locator {
	return &Locator{strategies: strategies, padding: padding, logger: logger}
}

// Locate runs the cascade, first success wins. found is false only when
// the locator was assembled without the center-crop fallback.
func (l *Locator) Locate(frame image.Image) (port.FaceRegion, bool) {
	for _, s := range l.strategies {
		box, ok, err := l.tryStrategy(s, frame)
		if err != nil {
			l.logger.Warn("face strategy failed, demoting",
				zap.String("strategy", s.Name()),
				zap.Error(err),
			)
			continue
		}
		if !ok {
			continue
		}

		padded := PadAndClamp(box, frame.Bounds(), l.padding)
		if padded.Empty() {
			continue
		}

		return port.FaceRegion{
			Image:      crop(frame, padded),
			Bounds:     padded,
			DetectedBy: s.Name(),
			Fallback:   s.Name() == CenterCropName,
		}, true
	}

	return port.FaceRegion{}, false
}

// tryStrategy shields the cascade from misbehaving detector libraries: a
// panic is demoted to an error like any other strategy failure.
func (l *Locator) tryStrategy(s Strategy, frame image.Image) (box image.Rectangle, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			box, ok = image.Rectangle{}, false
			err = fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()
	return s.TryDetect(frame)
}

// PadAndClamp grows box by the padding fraction of its width/height on
// each side, clamped to the frame bounds.
func PadAndClamp(box, bounds image.Rectangle, padding float64) image.Rectangle {
	padX := int(float64(box.Dx()) * padding)
	padY := int(float64(box.Dy()) * padding)
	padded := image.Rect(
		box.Min.X-padX,
		box.Min.Y-padY,
		box.Max.X+padX,
		box.Max.Y+padY,
	)
	return padded.Intersect(bounds)
}

func crop(frame image.Image, r image.Rectangle) image.Image {
	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if si, ok := frame.(subImager); ok {
		return si.SubImage(r)
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Copy(dst, image.Point{}, frame, r, draw.Src, nil)
	return dst
}
