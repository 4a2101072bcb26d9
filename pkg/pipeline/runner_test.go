package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/zen-systems/imagegate/pkg/adapter"
	"github.com/zen-systems/imagegate/pkg/artifact"
	"github.com/zen-systems/imagegate/pkg/transport"
)

// stubInvoker serves one canned native response for chain integration
// tests.
type stubInvoker struct {
	status int
	body   []byte
	err    error
}

func (s *stubInvoker) InvokeModel(_ context.Context, _ string, _ []byte) (*transport.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &transport.Response{StatusCode: s.status, Body: s.body}, nil
}

func (s *stubInvoker) CreateImage(_ context.Context, _ []byte) (*transport.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &transport.Response{StatusCode: s.status, Body: s.body}, nil
}

func (s *stubInvoker) ListModels(_ context.Context) ([]transport.ModelSummary, error) {
	return nil, nil
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	r := NewRunner(artifact.NewStore(t.TempDir()))
	r.Now = func() time.Time { return time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC) }
	return r
}

func TestGenerateFallsThroughToLastProvider(t *testing.T) {
	failing1 := &adapter.MockAdapter{ID: "p1", Err: errors.New("boom")}
	failing2 := &adapter.MockAdapter{ID: "p2", Err: errors.New("bang")}
	winner := adapter.NewMockAdapter("p3", "aGVsbG8=")

	r := newTestRunner(t)
	result, err := r.Generate(context.Background(), adapter.Request{Prompt: "a cat"},
		[]adapter.Adapter{failing1, failing2, winner})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if result.Primary.Provider != "p3" {
		t.Fatalf("expected primary from p3, got %q", result.Primary.Provider)
	}
	if len(result.Outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(result.Outcomes))
	}
	for i, outcome := range result.Outcomes[:2] {
		if outcome.Succeeded {
			t.Fatalf("outcome %d should have failed", i)
		}
	}
	if !result.Outcomes[2].Succeeded || result.Outcomes[2].Provider != "p3" {
		t.Fatalf("unexpected final outcome %+v", result.Outcomes[2])
	}
}

func TestGenerateEmptyChain(t *testing.T) {
	r := newTestRunner(t)

	_, err := r.Generate(context.Background(), adapter.Request{Prompt: "a cat"}, nil)
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %T: %v", err, err)
	}
	if len(exhausted.Outcomes) != 0 {
		t.Fatalf("expected no outcomes, got %d", len(exhausted.Outcomes))
	}
}

func TestGenerateRecordsTransportErrorReason(t *testing.T) {
	// Scenario: a single image-list provider whose transport errors.
	inv := &stubInvoker{err: errors.New("transport error")}
	ad, err := adapter.New(adapter.ProviderSpec{ID: "p1", Family: adapter.FamilyImageList, Invoker: inv})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	r := newTestRunner(t)
	_, err = r.Generate(context.Background(), adapter.Request{Prompt: "a cat"}, []adapter.Adapter{ad})

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %T: %v", err, err)
	}
	if len(exhausted.Outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(exhausted.Outcomes))
	}
	outcome := exhausted.Outcomes[0]
	if outcome.Provider != "p1" || outcome.Succeeded || outcome.Reason != "transport error" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestGenerateStopsAtFirstSuccess(t *testing.T) {
	winner := adapter.NewMockAdapter("p1", "aGk=")
	never := adapter.NewMockAdapter("p2", "aGk=")

	r := newTestRunner(t)
	result, err := r.Generate(context.Background(), adapter.Request{Prompt: "a cat"},
		[]adapter.Adapter{winner, never})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if result.Primary.Provider != "p1" {
		t.Fatalf("expected primary from p1, got %q", result.Primary.Provider)
	}
	if never.Calls != 0 {
		t.Fatalf("expected p2 never invoked, got %d calls", never.Calls)
	}
}

func TestGeneratePersistsChainResponse(t *testing.T) {
	// End to end through a real adapter: an artifact-list provider
	// whose payload decodes to "hello".
	inv := &stubInvoker{status: 200, body: []byte(`{"artifacts":[{"base64":"aGVsbG8="}]}`)}
	ad, err := adapter.New(adapter.ProviderSpec{ID: "p1", Family: adapter.FamilyArtifactList, Invoker: inv})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	r := newTestRunner(t)
	result, err := r.Generate(context.Background(), adapter.Request{Prompt: "a cat"}, []adapter.Adapter{ad})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	data, err := os.ReadFile(result.Primary.Path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected hello, got %q", data)
	}
}

func TestGenerateMultiplePayloadsShareStamp(t *testing.T) {
	winner := adapter.NewMockAdapter("p1", "aGVsbG8=", "aGk=")

	r := newTestRunner(t)
	result, err := r.Generate(context.Background(), adapter.Request{Prompt: "a cat"},
		[]adapter.Adapter{winner})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(result.Artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(result.Artifacts))
	}
	if result.Primary.Path != result.Artifacts[0].Path {
		t.Fatalf("primary should be the first artifact")
	}
	if result.Artifacts[0].Path == result.Artifacts[1].Path {
		t.Fatalf("payload indices should keep paths distinct")
	}
	for _, art := range result.Artifacts {
		if !art.CreatedAt.Equal(result.Primary.CreatedAt) {
			t.Fatalf("expected shared stamp across batch")
		}
		if _, err := os.Stat(art.Path); err != nil {
			t.Fatalf("artifact missing: %v", err)
		}
	}
}

func TestGenerateTwiceProducesDistinctPaths(t *testing.T) {
	winner := adapter.NewMockAdapter("p1", "aGk=")

	r := NewRunner(artifact.NewStore(t.TempDir()))
	stamps := []time.Time{
		time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
		time.Date(2024, 1, 2, 15, 4, 6, 0, time.UTC),
	}
	calls := 0
	r.Now = func() time.Time {
		stamp := stamps[calls]
		calls++
		return stamp
	}

	first, err := r.Generate(context.Background(), adapter.Request{Prompt: "a cat"}, []adapter.Adapter{winner})
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	second, err := r.Generate(context.Background(), adapter.Request{Prompt: "a cat"}, []adapter.Adapter{winner})
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}

	if first.Primary.Path == second.Primary.Path {
		t.Fatalf("expected distinct paths, both %q", first.Primary.Path)
	}
	for _, path := range []string{first.Primary.Path, second.Primary.Path} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("artifact missing: %v", err)
		}
	}
}

func TestGeneratePersistFailureFallsThrough(t *testing.T) {
	badPayload := adapter.NewMockAdapter("p1", "not base64!!!")
	winner := adapter.NewMockAdapter("p2", "aGk=")

	r := newTestRunner(t)
	result, err := r.Generate(context.Background(), adapter.Request{Prompt: "a cat"},
		[]adapter.Adapter{badPayload, winner})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if result.Primary.Provider != "p2" {
		t.Fatalf("expected fallthrough to p2, got %q", result.Primary.Provider)
	}
	if len(result.Outcomes) != 2 || result.Outcomes[0].Succeeded {
		t.Fatalf("expected failed first outcome, got %+v", result.Outcomes)
	}
}

func TestGenerateCancelledContext(t *testing.T) {
	winner := adapter.NewMockAdapter("p1", "aGk=")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRunner(t)
	_, err := r.Generate(ctx, adapter.Request{Prompt: "a cat"}, []adapter.Adapter{winner})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		t.Fatalf("cancellation must not look like an exhausted chain")
	}
}

func TestGenerateEmptyResultRejected(t *testing.T) {
	empty := &adapter.MockAdapter{ID: "p1"}
	r := newTestRunner(t)

	_, err := r.Generate(context.Background(), adapter.Request{Prompt: "a cat"}, []adapter.Adapter{empty})
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %T: %v", err, err)
	}
	if len(exhausted.Outcomes) != 1 || exhausted.Outcomes[0].Succeeded {
		t.Fatalf("expected failed outcome for empty result, got %+v", exhausted.Outcomes)
	}
}
