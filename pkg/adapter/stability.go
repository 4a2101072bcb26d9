package adapter

import (
	"context"
	"encoding/json"

	"github.com/zen-systems/imagegate/pkg/transport"
)

// StabilityAdapter speaks the Stability native wire format
// (artifact-list family).
type StabilityAdapter struct {
	spec ProviderSpec
}

// stabilityTextPrompt is one weighted prompt entry.
type stabilityTextPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

// stabilityRequest is the Stability invoke body.
type stabilityRequest struct {
	TextPrompts []stabilityTextPrompt `json:"text_prompts"`
	CfgScale    float64               `json:"cfg_scale"`
	Seed        int                   `json:"seed"`
	Steps       int                   `json:"steps"`
	Width       int                   `json:"width"`
	Height      int                   `json:"height"`
	StylePreset string                `json:"style_preset,omitempty"`
}

// stabilityResponse is the Stability invoke response. Only artifacts
// carrying a base64 field are usable.
type stabilityResponse struct {
	Artifacts []struct {
		Base64       string `json:"base64"`
		FinishReason string `json:"finishReason"`
	} `json:"artifacts"`
}

// Provider returns the provider identifier this adapter targets.
func (a *StabilityAdapter) Provider() string {
	return a.spec.ID
}

// Attempt generates images through the Stability native format.
func (a *StabilityAdapter) Attempt(ctx context.Context, req Request) (*Result, error) {
	width, height := req.Size()
	body, err := json.Marshal(stabilityRequest{
		TextPrompts: []stabilityTextPrompt{{Text: req.Prompt, Weight: 1.0}},
		CfgScale:    7,
		Seed:        0,
		Steps:       30,
		Width:       width,
		Height:      height,
		StylePreset: req.Style,
	})
	if err != nil {
		return nil, err
	}

	resp, err := a.spec.Invoker.InvokeModel(ctx, a.spec.ID, body)
	if err != nil {
		return nil, &TransportError{Provider: a.spec.ID, Err: err}
	}
	if err := checkStatus(a.spec.ID, resp); err != nil {
		return nil, err
	}

	var parsed stabilityResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, &SchemaError{Provider: a.spec.ID}
	}

	var payloads []string
	for _, art := range parsed.Artifacts {
		if art.Base64 != "" {
			payloads = append(payloads, art.Base64)
		}
	}
	if len(payloads) == 0 {
		return nil, &SchemaError{Provider: a.spec.ID}
	}
	return &Result{Provider: a.spec.ID, Payloads: payloads}, nil
}

// checkStatus converts a non-2xx gateway response into a transport
// error carrying the status.
func checkStatus(provider string, resp *transport.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &TransportError{Provider: provider, Status: resp.StatusCode}
}
