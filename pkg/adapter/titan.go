package adapter

import (
	"context"
	"encoding/json"
)

const defaultNegativePrompt = "low quality, blurry, distorted"

// TitanAdapter speaks the Titan native wire format (image-list family).
type TitanAdapter struct {
	spec ProviderSpec
}

// titanRequest is the Titan invoke body.
type titanRequest struct {
	TaskType              string           `json:"taskType"`
	TextToImageParams     titanTextParams  `json:"textToImageParams"`
	ImageGenerationConfig titanImageConfig `json:"imageGenerationConfig"`
}

type titanTextParams struct {
	Text         string `json:"text"`
	NegativeText string `json:"negativeText"`
}

type titanImageConfig struct {
	NumberOfImages int     `json:"numberOfImages"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	CfgScale       float64 `json:"cfgScale"`
	Seed           int     `json:"seed"`
}

// titanResponse is the Titan invoke response: base64 strings directly.
type titanResponse struct {
	Images []string `json:"images"`
}

// Provider returns the provider identifier this adapter targets.
func (a *TitanAdapter) Provider() string {
	return a.spec.ID
}

// Attempt generates images through the Titan native format.
func (a *TitanAdapter) Attempt(ctx context.Context, req Request) (*Result, error) {
	width, height := req.Size()
	negative := req.NegativePrompt
	if negative == "" {
		negative = defaultNegativePrompt
	}
	body, err := json.Marshal(titanRequest{
		TaskType: "TEXT_IMAGE",
		TextToImageParams: titanTextParams{
			Text:         req.Prompt,
			NegativeText: negative,
		},
		ImageGenerationConfig: titanImageConfig{
			NumberOfImages: req.ImageCount(),
			Height:         height,
			Width:          width,
			CfgScale:       7.0,
			Seed:           42,
		},
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

	var parsed titanResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, &SchemaError{Provider: a.spec.ID}
	}

	var payloads []string
	for _, img := range parsed.Images {
		if img != "" {
			payloads = append(payloads, img)
		}
	}
	if len(payloads) == 0 {
		return nil, &SchemaError{Provider: a.spec.ID}
	}
	return &Result{Provider: a.spec.ID, Payloads: payloads}, nil
}
