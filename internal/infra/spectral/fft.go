// Package spectral scores the frequency-domain signature of a face crop.
// Generative upsampling leaves elevated high-frequency energy that is
// invisible to the eye but obvious in the log-magnitude spectrum.
package spectral

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

const logEpsilon = 1e-10

type Scorer struct {
	maskSize int
	baseline float64
	ceiling  float64
}

// NewScorer builds the analytic scorer. maskSize is the half-side of the
// centered square that suppresses low-frequency content; baseline and
// ceiling are the empirically calibrated "real" floor and "synthetic"
// spike of the mean log-magnitude, mapped linearly onto [0,100].
func NewScorer(maskSize int, baseline, ceiling float64) *Scorer {
	if ceiling <= baseline {
		ceiling = baseline + 1
	}
	return &Scorer{maskSize: maskSize, baseline: baseline, ceiling: ceiling}
}

// Score returns the anomaly score in [0,100]. It is total: an image that
// cannot be analyzed scores 0 rather than failing the pipeline.
func (s *Scorer) Score(img image.Image) float64 {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	rows, cols := b.Dy(), b.Dx()
	if rows < 2 || cols < 2 {
		return 0
	}

	spectrum := fft2(img)

	// Shift the zero-frequency component to the center and take the
	// log-magnitude spectrum.
	magnitude := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		sr := (r + rows/2) % rows
		for c := 0; c < cols; c++ {
			sc := (c + cols/2) % cols
			v := cmplxAbs(spectrum[r*cols+c])
			magnitude[sr*cols+sc] = 20 * math.Log(v+logEpsilon)
		}
	}

	// Zero out the centered square: low frequencies carry the coarse face
	// shape, not the texture noise we are after.
	crow, ccol := rows/2, cols/2
	for r := max(0, crow-s.maskSize); r < min(rows, crow+s.maskSize); r++ {
		for c := max(0, ccol-s.maskSize); c < min(cols, ccol+s.maskSize); c++ {
			magnitude[r*cols+c] = 0
		}
	}

	mean := stat.Mean(magnitude, nil)

	score := (mean - s.baseline) * 100 / (s.ceiling - s.baseline)
	score = math.Max(0, math.Min(score, 100))
	return math.Round(score*100) / 100
}

// fft2 computes the 2-D DFT of the single-channel intensity of img,
// row transforms followed by column transforms.
func fft2(img image.Image) []complex128 {
	b := img.Bounds()
	rows, cols := b.Dy(), b.Dx()

	data := make([]complex128, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			data[y*cols+x] = complex(float64(g.Y), 0)
		}
	}

	rowFFT := fourier.NewCmplxFFT(cols)
	rowBuf := make([]complex128, cols)
	for r := 0; r < rows; r++ {
		copy(rowBuf, data[r*cols:(r+1)*cols])
		rowFFT.Coefficients(data[r*cols:(r+1)*cols], rowBuf)
	}

	colFFT := fourier.NewCmplxFFT(rows)
	colIn := make([]complex128, rows)
	colOut := make([]complex128, rows)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			colIn[r] = data[r*cols+c]
		}
		colFFT.Coefficients(colOut, colIn)
		for r := 0; r < rows; r++ {
			data[r*cols+c] = colOut[r]
		}
	}

	return data
}

func cmplxAbs(v complex128) float64 {
	return math.Hypot(real(v), imag(v))
}
