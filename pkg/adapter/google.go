package adapter

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/genai"
)

// GoogleAdapter generates images through Google's Imagen models. It
// sits outside the gateway entirely, which makes it a useful last link
// in the chain when no gateway model is reachable.
type GoogleAdapter struct {
	client *genai.Client
	model  string
}

// NewGoogleAdapter creates a Google Imagen adapter.
func NewGoogleAdapter(ctx context.Context, apiKey, model string) (*GoogleAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model identifier is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	return &GoogleAdapter{client: client, model: model}, nil
}

// Provider returns the provider identifier this adapter targets.
func (a *GoogleAdapter) Provider() string {
	return a.model
}

// Attempt generates images via the Imagen API. The SDK hands back raw
// bytes, so they are re-encoded to match the normalized payload shape.
func (a *GoogleAdapter) Attempt(ctx context.Context, req Request) (*Result, error) {
	cfg := &genai.GenerateImagesConfig{
		NumberOfImages: int32(req.ImageCount()),
	}
	if req.NegativePrompt != "" {
		cfg.NegativePrompt = req.NegativePrompt
	}

	resp, err := a.client.Models.GenerateImages(ctx, a.model, req.Prompt, cfg)
	if err != nil {
		return nil, &TransportError{Provider: a.model, Err: err}
	}

	var payloads []string
	for _, img := range resp.GeneratedImages {
		if img.Image != nil && len(img.Image.ImageBytes) > 0 {
			payloads = append(payloads, base64.StdEncoding.EncodeToString(img.Image.ImageBytes))
		}
	}
	if len(payloads) == 0 {
		return nil, &SchemaError{Provider: a.model}
	}
	return &Result{Provider: a.model, Payloads: payloads}, nil
}
