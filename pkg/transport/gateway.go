package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Gateway talks to a Bedrock access gateway over plain HTTP. The
// gateway exposes an OpenAI-compatible surface (/images/generations,
// /models) alongside a native invoke endpoint (/model/{id}/invoke).
type Gateway struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// modelListResponse represents the OpenAI-compatible model list format.
type modelListResponse struct {
	Data []ModelSummary `json:"data"`
}

// NewGateway creates a gateway client. The timeout bounds each attempt;
// zero means no client-side limit.
func NewGateway(baseURL, token string, timeout time.Duration) *Gateway {
	return &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// InvokeModel posts a native request body to the runtime invoke
// endpoint for modelID.
func (g *Gateway) InvokeModel(ctx context.Context, modelID string, body []byte) (*Response, error) {
	path := fmt.Sprintf("/model/%s/invoke", url.PathEscape(modelID))
	return g.post(ctx, path, body)
}

// CreateImage posts an OpenAI-format image request to the gateway.
func (g *Gateway) CreateImage(ctx context.Context, body []byte) (*Response, error) {
	return g.post(ctx, "/images/generations", body)
}

// ListModels fetches the gateway's model list.
func (g *Gateway) ListModels(ctx context.Context) ([]ModelSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read model list: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model list returned status %d", resp.StatusCode)
	}

	var parsed modelListResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse model list: %w", err)
	}
	return parsed.Data, nil
}

func (g *Gateway) post(ctx context.Context, path string, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}
