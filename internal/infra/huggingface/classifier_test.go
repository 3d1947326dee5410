package huggingface

import (
	"context"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 64, 64))
}

func TestClassifyReturnsTopResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/acme/detector", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"label":"Fake","score":0.92},{"label":"Real","score":0.08}]`))
	}))
	defer srv.Close()

	c := NewClassifier(srv.URL, "acme/detector", "secret", zap.NewNop())

	got, err := c.Classify(context.Background(), testImage())
	require.NoError(t, err)
	assert.Equal(t, "Fake", got.Label)
	assert.InDelta(t, 0.92, got.Confidence, 1e-9)
}

func TestClassifyPicksHighestScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"label":"Real","score":0.31},{"label":"Fake","score":0.69}]`))
	}))
	defer srv.Close()

	c := NewClassifier(srv.URL, "acme/detector", "", zap.NewNop())

	got, err := c.Classify(context.Background(), testImage())
	require.NoError(t, err)
	assert.Equal(t, "Fake", got.Label)
}

func TestClassifyErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"model loading"}`))
	}))
	defer srv.Close()

	c := NewClassifier(srv.URL, "acme/detector", "", zap.NewNop())

	_, err := c.Classify(context.Background(), testImage())
	assert.Error(t, err)
}

func TestClassifyEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClassifier(srv.URL, "acme/detector", "", zap.NewNop())

	_, err := c.Classify(context.Background(), testImage())
	assert.Error(t, err)
}

func TestDownscaleBoundsLargeCrops(t *testing.T) {
	big := image.NewRGBA(image.Rect(0, 0, 2048, 1024))

	small := downscale(big)
	assert.LessOrEqual(t, small.Bounds().Dx(), maxUploadEdge)
	assert.LessOrEqual(t, small.Bounds().Dy(), maxUploadEdge)

	keep := image.NewRGBA(image.Rect(0, 0, 100, 100))
	assert.Equal(t, keep, downscale(keep))
}
