package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/zen-systems/imagegate/pkg/adapter"
	"github.com/zen-systems/imagegate/pkg/artifact"
)

// Outcome records one provider attempt for diagnostic reporting.
type Outcome struct {
	Provider  string `json:"provider"`
	Succeeded bool   `json:"succeeded"`
	Reason    string `json:"reason,omitempty"`
}

// Result captures a successful generation: the primary artifact (first
// payload of the winning response), every persisted artifact, and the
// full attempt history including the failures that preceded success.
type Result struct {
	Primary   *artifact.Artifact
	Artifacts []*artifact.Artifact
	Outcomes  []Outcome
}

// ExhaustedError reports that every provider in the chain was attempted
// without success. Outcomes are in attempt order.
type ExhaustedError struct {
	Outcomes []Outcome
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("tried %d providers, none available/compatible", len(e.Outcomes))
}

// Runner drives a generation request through an ordered provider chain,
// stopping at the first success. Attempts are strictly sequential and
// strictly in caller order.
type Runner struct {
	Store *artifact.Store

	// Now supplies the timestamp shared by all artifacts of one call.
	// Nil means time.Now.
	Now func() time.Time

	// Logf receives per-attempt progress. Nil disables logging.
	Logf func(format string, args ...any)
}

// NewRunner creates a runner that persists into store.
func NewRunner(store *artifact.Store) *Runner {
	return &Runner{Store: store}
}

// Generate attempts each provider in order and persists the first
// successful response. Every per-attempt failure, including a failed
// persist, is recorded as an Outcome and the next provider is tried;
// only cancellation and misconfiguration escape directly. An exhausted
// chain returns *ExhaustedError carrying the full attempt history.
func (r *Runner) Generate(ctx context.Context, req adapter.Request, chain []adapter.Adapter) (*Result, error) {
	if r.Store == nil {
		return nil, fmt.Errorf("artifact store is required")
	}

	now := r.Now
	if now == nil {
		now = time.Now
	}
	stamp := now()

	outcomes := make([]Outcome, 0, len(chain))
	for _, ad := range chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.logf("trying provider %s", ad.Provider())
		res, err := ad.Attempt(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logf("provider %s failed: %v", ad.Provider(), err)
			outcomes = append(outcomes, Outcome{Provider: ad.Provider(), Reason: err.Error()})
			continue
		}

		arts, err := r.persistAll(res, stamp)
		if err != nil {
			r.logf("provider %s succeeded but persist failed: %v", ad.Provider(), err)
			outcomes = append(outcomes, Outcome{Provider: ad.Provider(), Reason: err.Error()})
			continue
		}

		outcomes = append(outcomes, Outcome{Provider: ad.Provider(), Succeeded: true})
		r.logf("provider %s produced %d artifact(s)", ad.Provider(), len(arts))
		return &Result{Primary: arts[0], Artifacts: arts, Outcomes: outcomes}, nil
	}

	return nil, &ExhaustedError{Outcomes: outcomes}
}

// persistAll writes every payload of a response under the shared stamp.
func (r *Runner) persistAll(res *adapter.Result, stamp time.Time) ([]*artifact.Artifact, error) {
	if res == nil || len(res.Payloads) == 0 {
		return nil, fmt.Errorf("provider returned an empty result")
	}
	arts := make([]*artifact.Artifact, 0, len(res.Payloads))
	for i, blob := range res.Payloads {
		art, err := r.Store.Persist(blob, res.Provider, stamp, i)
		if err != nil {
			return nil, err
		}
		arts = append(arts, art)
	}
	return arts, nil
}

func (r *Runner) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}
