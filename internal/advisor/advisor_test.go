package advisor_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/neighborjob/marketplace/internal/advisor"
	"github.com/neighborjob/marketplace/internal/cache"
	"github.com/neighborjob/marketplace/internal/llm"
)

// fakeClient answers every completion with content or err, optionally after
// blocking until the context is done.
type fakeClient struct {
	content string
	err     error
	block   bool
	calls   atomic.Int32
	lastReq *llm.CompletionRequest
}

func (f *fakeClient) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls.Add(1)
	f.lastReq = req
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.content, Model: "fake"}, nil
}

func (f *fakeClient) Name() string     { return "fake" }
func (f *fakeClient) Models() []string { return []string{"fake"} }

// ── Refine ─────────────────────────────────────────────────────────────────

func TestRefine_ParsesJSON(t *testing.T) {
	client := &fakeClient{content: "```json\n{\"refinedTitle\":\"Dog Walking Needed\",\"refinedDescription\":\"30-minute walk for a friendly retriever.\",\"suggestedPriceRange\":\"$15-$20\"}\n```"}
	a := advisor.New(client, nil, advisor.Config{}, nil)

	r, err := a.Refine(context.Background(), "walk dog", "walk buddy 30 mins")
	if err != nil {
		t.Fatalf("Refine returned error: %v", err)
	}
	if r.RefinedTitle != "Dog Walking Needed" {
		t.Errorf("RefinedTitle = %q", r.RefinedTitle)
	}
	if r.SuggestedPriceRange != "$15-$20" {
		t.Errorf("SuggestedPriceRange = %q", r.SuggestedPriceRange)
	}
	if !client.lastReq.JSON {
		t.Error("Refine did not request a JSON response")
	}
}

func TestRefine_FailureIsExternalService(t *testing.T) {
	cases := []struct {
		name   string
		client *fakeClient
	}{
		{"transport error", &fakeClient{err: errors.New("connection reset")}},
		{"not json", &fakeClient{content: "Sorry, I can't help with that."}},
		{"missing fields", &fakeClient{content: `{"refinedTitle":"Only a title"}`}},
	}
	for _, c := range cases {
		a := advisor.New(c.client, nil, advisor.Config{}, nil)
		r, err := a.Refine(context.Background(), "t", "d")
		if !errors.Is(err, advisor.ErrExternalService) {
			t.Errorf("%s: err = %v, want ErrExternalService", c.name, err)
		}
		if r != nil {
			t.Errorf("%s: refinement = %+v, want nil", c.name, r)
		}
	}
}

func TestRefine_NoClient(t *testing.T) {
	a := advisor.New(nil, nil, advisor.Config{}, nil)
	if a.Enabled() {
		t.Error("Enabled() = true without a client")
	}
	if _, err := a.Refine(context.Background(), "t", "d"); !errors.Is(err, advisor.ErrExternalService) {
		t.Errorf("err = %v, want ErrExternalService", err)
	}
}

func TestRefine_Timeout(t *testing.T) {
	client := &fakeClient{block: true}
	a := advisor.New(client, nil, advisor.Config{Timeout: 20 * time.Millisecond}, nil)

	start := time.Now()
	_, err := a.Refine(context.Background(), "t", "d")
	if !errors.Is(err, advisor.ErrExternalService) {
		t.Errorf("err = %v, want ErrExternalService", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Refine took %v, timeout not applied", elapsed)
	}
}

// ── Advise ─────────────────────────────────────────────────────────────────

func TestAdvise_Success(t *testing.T) {
	client := &fakeClient{content: "1. Bring a leash.\n2. Confirm the route.\n3. Share your ETA."}
	a := advisor.New(client, nil, advisor.Config{}, nil)

	got := a.Advise(context.Background(), "walk the dog")
	if got.Fallback {
		t.Error("Fallback = true on success")
	}
	if got.Text != client.content {
		t.Errorf("Text = %q", got.Text)
	}
}

func TestAdvise_FallsBack(t *testing.T) {
	cases := []struct {
		name   string
		client llm.Client
		cfg    advisor.Config
	}{
		{"error", &fakeClient{err: errors.New("boom")}, advisor.Config{}},
		{"empty", &fakeClient{content: "   "}, advisor.Config{}},
		{"timeout", &fakeClient{block: true}, advisor.Config{Timeout: 20 * time.Millisecond}},
		{"no client", nil, advisor.Config{}},
	}
	for _, c := range cases {
		a := advisor.New(c.client, nil, c.cfg, nil)
		got := a.Advise(context.Background(), "fix the faucet")
		if !got.Fallback || got.Text != advisor.FallbackAdvice {
			t.Errorf("%s: Advise = %+v, want fallback", c.name, got)
		}
	}
}

func TestAdvise_UsesCache(t *testing.T) {
	client := &fakeClient{content: "Wear gloves."}
	a := advisor.New(client, cache.NewMemory(), advisor.Config{CacheTTL: time.Minute}, nil)

	first := a.Advise(context.Background(), "clean the garage")
	second := a.Advise(context.Background(), "clean the garage")

	if first.Text != "Wear gloves." || second.Text != "Wear gloves." {
		t.Errorf("advice = %q / %q", first.Text, second.Text)
	}
	if n := client.calls.Load(); n != 1 {
		t.Errorf("LLM called %d times, want 1", n)
	}
}

func TestAdvise_DoesNotCacheFallback(t *testing.T) {
	client := &fakeClient{err: errors.New("boom")}
	a := advisor.New(client, cache.NewMemory(), advisor.Config{CacheTTL: time.Minute}, nil)

	a.Advise(context.Background(), "clean the garage")
	client.err = nil
	client.content = "Wear gloves."

	got := a.Advise(context.Background(), "clean the garage")
	if got.Fallback || got.Text != "Wear gloves." {
		t.Errorf("Advise after recovery = %+v, want fresh advice", got)
	}
}
