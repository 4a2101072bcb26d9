package adapter

import (
	"context"
	"encoding/json"
	"fmt"
)

// GatewayImageAdapter speaks the gateway's OpenAI-compatible images
// endpoint (data family). The model travels in the request body rather
// than the URL.
type GatewayImageAdapter struct {
	spec ProviderSpec
}

// gatewayImageRequest is the OpenAI-format image generation body.
type gatewayImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
	Style          string `json:"style,omitempty"`
}

// gatewayImageResponse is the OpenAI-format response. Entries may carry
// a URL instead of inline data; only b64_json entries are usable.
type gatewayImageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

// Provider returns the provider identifier this adapter targets.
func (a *GatewayImageAdapter) Provider() string {
	return a.spec.ID
}

// Attempt generates images through the gateway's images endpoint.
func (a *GatewayImageAdapter) Attempt(ctx context.Context, req Request) (*Result, error) {
	width, height := req.Size()
	body, err := json.Marshal(gatewayImageRequest{
		Model:          a.spec.ID,
		Prompt:         req.Prompt,
		N:              req.ImageCount(),
		Size:           fmt.Sprintf("%dx%d", width, height),
		ResponseFormat: "b64_json",
		Style:          req.Style,
	})
	if err != nil {
		return nil, err
	}

	resp, err := a.spec.Invoker.CreateImage(ctx, body)
	if err != nil {
		return nil, &TransportError{Provider: a.spec.ID, Err: err}
	}
	if err := checkStatus(a.spec.ID, resp); err != nil {
		return nil, err
	}

	var parsed gatewayImageResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, &SchemaError{Provider: a.spec.ID}
	}

	var payloads []string
	for _, entry := range parsed.Data {
		if entry.B64JSON != "" {
			payloads = append(payloads, entry.B64JSON)
		}
	}
	if len(payloads) == 0 {
		return nil, &SchemaError{Provider: a.spec.ID}
	}
	return &Result{Provider: a.spec.ID, Payloads: payloads}, nil
}
