package facedetect

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// PigoStrategy is the primary detector: a learned pixel-intensity-comparison
// face classifier that runs without cgo. It needs a cascade model file;
// absence of the file means the capability is unavailable, decided once at
// construction rather than per frame.
type PigoStrategy struct {
	classifier *pigo.Pigo
	minQuality float32
}

func NewPigoStrategy(cascadePath string) (*PigoStrategy, error) {
	data, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("read face cascade model: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack face cascade model: %w", err)
	}

	return &PigoStrategy{classifier: classifier, minQuality: 5.0}, nil
}

func (p *PigoStrategy) Name() string { return "pigo" }

func (p *PigoStrategy) TryDetect(frame image.Image) (image.Rectangle, bool, error) {
	b := frame.Bounds()
	rows, cols := b.Dy(), b.Dx()
	if rows == 0 || cols == 0 {
		return image.Rectangle{}, false, nil
	}

	pixels := pigo.RgbToGrayscale(frame)

	params := pigo.CascadeParams{
		MinSize:     40,
		MaxSize:     maxInt(rows, cols),
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := p.classifier.RunCascade(params, 0.0)
	dets = p.classifier.ClusterDetections(dets, 0.2)

	var best pigo.Detection
	found := false
	for _, d := range dets {
		if d.Q >= p.minQuality && (!found || d.Q > best.Q) {
			best = d
			found = true
		}
	}
	if !found {
		return image.Rectangle{}, false, nil
	}

	half := best.Scale / 2
	box := image.Rect(
		b.Min.X+best.Col-half,
		b.Min.Y+best.Row-half,
		b.Min.X+best.Col+half,
		b.Min.Y+best.Row+half,
	)
	return box, true, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
