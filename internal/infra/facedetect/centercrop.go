package facedetect

import "image"

// CenterCropName tags regions produced by the fallback so callers can
// distinguish them from real detections for calibration and debugging.
const CenterCropName = "center_crop"

// CenterCrop is the last-resort strategy: the central 50%x50% of the
// frame. It always succeeds, which makes "no face found" structurally
// impossible when it terminates the cascade.
type CenterCrop struct{}

func (CenterCrop) Name() string { return CenterCropName }

func (CenterCrop) TryDetect(frame image.Image) (image.Rectangle, bool, error) {
	b := frame.Bounds()
	w, h := b.Dx()/2, b.Dy()/2
	x0 := b.Min.X + (b.Dx()-w)/2
	y0 := b.Min.Y + (b.Dy()-h)/2
	return image.Rect(x0, y0, x0+w, y0+h), true, nil
}
