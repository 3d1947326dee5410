package port

import "image"

// FaceRegion is the cropped sub-image believed to contain the primary face.
// Fallback distinguishes a center-crop guess from a real detection so that
// downstream calibration can tell them apart.
type FaceRegion struct {
	Image      image.Image
	Bounds     image.Rectangle
	DetectedBy string
	Fallback   bool
}

// FaceLocator finds and crops a facial region in a frame. Implementations
// never fail: detector errors demote through a strategy cascade whose last
// member always succeeds, so found is false only when the cascade is
// assembled without its fallback.
type FaceLocator interface {
	Locate(frame image.Image) (FaceRegion, bool)
}
