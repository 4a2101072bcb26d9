package refine

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultModel = "claude-sonnet-4-20250514"

const rewriteTemplate = `Rewrite the following image generation prompt to be more vivid and specific. Keep it under 150 words and reply with the rewritten prompt only, no commentary.

%s`

// Refiner rewrites image prompts with Claude before they reach the
// provider chain.
type Refiner struct {
	client anthropic.Client
	model  string
}

// NewRefiner creates a refiner using the given API key.
func NewRefiner(apiKey string) (*Refiner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Refiner{client: client, model: defaultModel}, nil
}

// Refine returns a rewritten version of prompt.
func (r *Refiner) Refine(ctx context.Context, prompt string) (string, error) {
	return r.Complete(ctx, fmt.Sprintf(rewriteTemplate, prompt))
}

// Complete sends a raw prompt to Claude and returns the text of the
// response.
func (r *Refiner) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("anthropic returned no text")
	}
	return content, nil
}
