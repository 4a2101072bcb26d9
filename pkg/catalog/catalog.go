package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/zen-systems/imagegate/pkg/transport"
)

// Catalog discovers which models the gateway currently exposes. It only
// seeds provider chains; it plays no part in fallback semantics.
type Catalog struct {
	invoker transport.Invoker
}

// New creates a catalog backed by the given transport.
func New(invoker transport.Invoker) *Catalog {
	return &Catalog{invoker: invoker}
}

// Discover returns the identifiers of models whose id contains the
// keyword, case-insensitively, in gateway order. No match is an empty
// slice, not an error; the caller decides whether that is fatal.
func (c *Catalog) Discover(ctx context.Context, keyword string) ([]string, error) {
	models, err := c.invoker.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	kw := strings.ToLower(keyword)
	ids := make([]string, 0, len(models))
	for _, m := range models {
		if strings.Contains(strings.ToLower(m.ID), kw) {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

// DiscoverAny returns models matching any of the keywords, in gateway
// order, without duplicates.
func (c *Catalog) DiscoverAny(ctx context.Context, keywords ...string) ([]string, error) {
	models, err := c.invoker.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	ids := make([]string, 0, len(models))
	for _, m := range models {
		lower := strings.ToLower(m.ID)
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				ids = append(ids, m.ID)
				break
			}
		}
	}
	return ids, nil
}
