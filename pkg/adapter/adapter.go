package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/zen-systems/imagegate/pkg/transport"
)

// Family identifies the wire format a provider speaks. Providers in the
// same family share an identical request and response shape.
type Family string

const (
	// FamilyArtifactList is the Stability native format: weighted text
	// prompts in, {"artifacts":[{"base64":...}]} out.
	FamilyArtifactList Family = "artifact_list"

	// FamilyImageList is the Titan native format: a text-to-image task
	// block in, {"images":["<b64>"]} out.
	FamilyImageList Family = "image_list"

	// FamilyOpenAIData is the gateway's OpenAI-compatible images
	// endpoint: {"data":[{"b64_json":...}]} out.
	FamilyOpenAIData Family = "openai_data"
)

// ProviderSpec binds a provider identifier to its wire family and the
// transport that reaches it. Specs are fixed configuration; ordering of
// a spec list encodes attempt priority.
type ProviderSpec struct {
	ID      string
	Family  Family
	Invoker transport.Invoker
}

// Request is a provider-independent generation request. It is built
// once per generation call and never mutated.
type Request struct {
	Prompt         string
	NegativePrompt string
	Style          string
	Width          int
	Height         int
	Count          int
}

// Size returns the requested dimensions, defaulting to 1024x1024.
func (r Request) Size() (width, height int) {
	width, height = r.Width, r.Height
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 1024
	}
	return width, height
}

// ImageCount returns the requested number of images, at least one.
func (r Request) ImageCount() int {
	if r.Count <= 0 {
		return 1
	}
	return r.Count
}

// Result is the family-independent shape of a successful generation.
// Payloads is never empty: an adapter either produces at least one
// base64 image or returns an error.
type Result struct {
	Provider string
	Payloads []string
}

// Adapter translates generic requests into one provider's wire format
// and normalizes the raw response. Attempt never panics through to the
// caller; every failure mode comes back as an error value.
type Adapter interface {
	Attempt(ctx context.Context, req Request) (*Result, error)
	Provider() string
}

// New builds the adapter for a provider spec.
func New(spec ProviderSpec) (Adapter, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("provider spec has empty identifier")
	}
	if spec.Invoker == nil {
		return nil, fmt.Errorf("provider spec %s has no invoker", spec.ID)
	}
	switch spec.Family {
	case FamilyArtifactList:
		return &StabilityAdapter{spec: spec}, nil
	case FamilyImageList:
		return &TitanAdapter{spec: spec}, nil
	case FamilyOpenAIData:
		return &GatewayImageAdapter{spec: spec}, nil
	default:
		return nil, fmt.Errorf("provider spec %s has unknown family %q", spec.ID, spec.Family)
	}
}

// FamilyForModel guesses the native wire family from a model
// identifier. Titan models speak the image list format, Stability
// models the artifact list format; anything else goes through the
// gateway's OpenAI-compatible endpoint.
func FamilyForModel(id string) Family {
	lower := strings.ToLower(id)
	switch {
	case strings.Contains(lower, "titan"):
		return FamilyImageList
	case strings.Contains(lower, "stab"):
		return FamilyArtifactList
	default:
		return FamilyOpenAIData
	}
}
