// Package opencv provides the secondary face-detection strategy: a
// classical Haar cascade classifier backed by OpenCV. It lives in its own
// package so the cgo dependency stays at the edge of the build.
package opencv

import (
	"errors"
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
)

// Standard install locations for the frontal-face cascade XML shipped
// with OpenCV.
var defaultCascadePaths = []string{
	"/usr/share/opencv4/haarcascades/haarcascade_frontalface_default.xml",
	"/usr/local/share/opencv4/haarcascades/haarcascade_frontalface_default.xml",
	"/opt/homebrew/share/opencv4/haarcascades/haarcascade_frontalface_default.xml",
}

type HaarStrategy struct {
	classifier gocv.CascadeClassifier
}

// NewHaarStrategy loads the cascade from xmlPath, or searches the standard
// locations when xmlPath is empty. A missing or unloadable cascade means
// the capability is unavailable and the strategy is left out of the chain.
func NewHaarStrategy(xmlPath string) (*HaarStrategy, error) {
	path := xmlPath
	if path == "" {
		path = findCascade()
	}
	if path == "" {
		return nil, errors.New("no haar cascade xml found in standard locations")
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("load haar cascade %s", path)
	}

	return &HaarStrategy{classifier: classifier}, nil
}

func (h *HaarStrategy) Name() string { return "haar_cascade" }

func (h *HaarStrategy) TryDetect(frame image.Image) (image.Rectangle, bool, error) {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return image.Rectangle{}, false, fmt.Errorf("convert frame to mat: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorRGBToGray)

	rects := h.classifier.DetectMultiScaleWithParams(
		gray, 1.3, 5, 0,
		image.Pt(40, 40), image.Pt(0, 0),
	)
	if len(rects) == 0 {
		return image.Rectangle{}, false, nil
	}

	// Largest detection stands in for highest confidence; Haar cascades
	// report no scores.
	best := rects[0]
	for _, r := range rects[1:] {
		if r.Dx()*r.Dy() > best.Dx()*best.Dy() {
			best = r
		}
	}

	b := frame.Bounds()
	return best.Add(b.Min), true, nil
}

func (h *HaarStrategy) Close() error {
	return h.classifier.Close()
}

func findCascade() string {
	for _, p := range defaultCascadePaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
