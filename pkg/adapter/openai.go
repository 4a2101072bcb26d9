package adapter

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIAdapter drives the gateway's OpenAI-compatible surface through
// the official SDK instead of a hand-built request body. It is just
// another link in the fallback chain.
type OpenAIAdapter struct {
	client openai.Client
	model  string
}

// NewOpenAIAdapter creates an SDK-backed adapter pointed at the
// gateway.
func NewOpenAIAdapter(baseURL, token, model string) (*OpenAIAdapter, error) {
	if model == "" {
		return nil, fmt.Errorf("model identifier is required")
	}
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(token),
	)
	return &OpenAIAdapter{client: client, model: model}, nil
}

// Provider returns the provider identifier this adapter targets.
func (a *OpenAIAdapter) Provider() string {
	return a.model
}

// Attempt generates images via the SDK, requesting inline base64
// output.
func (a *OpenAIAdapter) Attempt(ctx context.Context, req Request) (*Result, error) {
	width, height := req.Size()
	resp, err := a.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         req.Prompt,
		Model:          openai.ImageModel(a.model),
		N:              openai.Int(int64(req.ImageCount())),
		Size:           openai.ImageGenerateParamsSize(fmt.Sprintf("%dx%d", width, height)),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return nil, &TransportError{Provider: a.model, Err: err}
	}

	var payloads []string
	for _, entry := range resp.Data {
		if entry.B64JSON != "" {
			payloads = append(payloads, entry.B64JSON)
		}
	}
	if len(payloads) == 0 {
		return nil, &SchemaError{Provider: a.model}
	}
	return &Result{Provider: a.model, Payloads: payloads}, nil
}
