package adapter

import "context"

// MockAdapter returns canned results for local runs and tests.
type MockAdapter struct {
	ID       string
	Payloads []string
	Err      error
	Calls    int
}

// NewMockAdapter creates a mock adapter for the given provider id.
func NewMockAdapter(id string, payloads ...string) *MockAdapter {
	return &MockAdapter{ID: id, Payloads: payloads}
}

// Provider returns the mock's provider identifier.
func (a *MockAdapter) Provider() string {
	return a.ID
}

// Attempt returns the configured payloads or error.
func (a *MockAdapter) Attempt(_ context.Context, _ Request) (*Result, error) {
	a.Calls++
	if a.Err != nil {
		return nil, a.Err
	}
	return &Result{Provider: a.ID, Payloads: a.Payloads}, nil
}
