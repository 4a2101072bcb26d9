package transport

import "context"

// Response carries the raw outcome of a provider call. A Response is
// returned whenever the HTTP exchange completed, including non-2xx
// statuses; callers decide what a given status means.
type Response struct {
	StatusCode int
	Body       []byte
}

// ModelSummary describes one model entry from the gateway's model list.
type ModelSummary struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// Invoker is the boundary between adapters and the network. Errors are
// reserved for transport-level faults (connection refused, timeout,
// cancellation); an HTTP error status still yields a Response.
type Invoker interface {
	// InvokeModel posts a native model request body to the runtime
	// invoke endpoint for the given model identifier.
	InvokeModel(ctx context.Context, modelID string, body []byte) (*Response, error)

	// CreateImage posts an OpenAI-format image generation request to
	// the gateway's images endpoint.
	CreateImage(ctx context.Context, body []byte) (*Response, error)

	// ListModels returns the models the gateway currently exposes.
	ListModels(ctx context.Context) ([]ModelSummary, error)
}
