// Package huggingface calls the hosted inference API for image
// classification. The pipeline treats this capability as optional: when it
// is not configured the extractor layer substitutes a placeholder signal.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/port"
)

// maxUploadEdge bounds the crop size sent over the wire; the detector
// models downscale internally anyway.
const maxUploadEdge = 512

type Classifier struct {
	endpoint string
	model    string
	token    string
	client   *http.Client
	logger   *zap.Logger
}

func NewClassifier(endpoint, model, token string, logger *zap.Logger) *Classifier {
	return &Classifier{
		endpoint: endpoint,
		model:    model,
		token:    token,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

type inferenceResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify posts the JPEG-encoded crop and returns the top-1 label and
// confidence.
func (c *Classifier) Classify(ctx context.Context, img image.Image) (port.Classification, error) {
	body, err := encodeJPEG(downscale(img))
	if err != nil {
		return port.Classification{}, fmt.Errorf("encode crop: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return port.Classification{}, fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return port.Classification{}, fmt.Errorf("inference call: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return port.Classification{}, fmt.Errorf("read inference response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return port.Classification{}, fmt.Errorf("inference status %d: %s", resp.StatusCode, string(payload))
	}

	var results []inferenceResult
	if err := json.Unmarshal(payload, &results); err != nil {
		return port.Classification{}, fmt.Errorf("parse inference response: %w", err)
	}
	if len(results) == 0 {
		return port.Classification{}, fmt.Errorf("empty inference response")
	}

	top := results[0]
	for _, r := range results[1:] {
		if r.Score > top.Score {
			top = r
		}
	}

	return port.Classification{Label: top.Label, Confidence: top.Score}, nil
}

func downscale(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxUploadEdge && b.Dy() <= maxUploadEdge {
		return img
	}

	scale := float64(maxUploadEdge) / float64(max(b.Dx(), b.Dy()))
	dst := image.NewRGBA(image.Rect(0, 0,
		int(float64(b.Dx())*scale),
		int(float64(b.Dy())*scale),
	))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
