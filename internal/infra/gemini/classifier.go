// Package gemini is an alternative classifier backend that asks a
// multimodal model for a structured REAL/FAKE judgement.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/port"
)

const classifyPrompt = `You are a deepfake detection system. Examine the supplied face image for signs of ` +
	`synthetic generation or face swapping (blending seams, inconsistent lighting, upsampling texture, ` +
	`irregular specular highlights). Respond with JSON only, exactly: ` +
	`{"label": "fake" or "real", "confidence": <number between 0 and 1>}`

type Classifier struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

func NewClassifier(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (*Classifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key must not be empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.GenerationConfig.ResponseMIMEType = "application/json"

	return &Classifier{client: client, model: model, logger: logger}, nil
}

func (c *Classifier) Classify(ctx context.Context, img image.Image) (port.Classification, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return port.Classification{}, fmt.Errorf("encode crop: %w", err)
	}

	resp, err := c.model.GenerateContent(ctx,
		genai.ImageData("jpeg", buf.Bytes()),
		genai.Text(classifyPrompt),
	)
	if err != nil {
		return port.Classification{}, fmt.Errorf("generate content: %w", err)
	}

	raw := collectText(resp)
	if raw == "" {
		return port.Classification{}, fmt.Errorf("empty model response")
	}

	var out struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &out); err != nil {
		return port.Classification{}, fmt.Errorf("parse model response %q: %w", raw, err)
	}

	return port.Classification{Label: out.Label, Confidence: out.Confidence}, nil
}

func (c *Classifier) Close() error {
	return c.client.Close()
}

func collectText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// cleanJSON strips markdown fences and surrounding prose that models
// sometimes wrap around a JSON object.
func cleanJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	first := strings.Index(cleaned, "{")
	last := strings.LastIndex(cleaned, "}")
	if first != -1 && last > first {
		cleaned = cleaned[first : last+1]
	}
	return cleaned
}
