package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/neighborjob/marketplace/internal/llm"
)

func newGemini(t *testing.T, handler http.HandlerFunc) *llm.GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := llm.NewGeminiClient("test-key")
	if err != nil {
		t.Fatalf("NewGeminiClient returned error: %v", err)
	}
	c.BaseURL = srv.URL
	c.HTTP = srv.Client()
	return c
}

func TestGemini_Complete(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	c := newGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{"content": {"parts": [{"text": "Bring a leash."}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 4}
		}`))
	})

	resp, err := c.Complete(context.Background(), &llm.CompletionRequest{
		Messages: llm.UserMessage("tips please"),
		JSON:     true,
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	if gotPath != "/models/gemini-3-flash-preview:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q, want test-key", gotKey)
	}
	cfg, _ := gotBody["generationConfig"].(map[string]any)
	if cfg["responseMimeType"] != "application/json" {
		t.Errorf("responseMimeType = %v, want application/json", cfg["responseMimeType"])
	}

	if resp.Content != "Bring a leash." {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.TokensIn != 12 || resp.TokensOut != 4 {
		t.Errorf("tokens = %d/%d, want 12/4", resp.TokensIn, resp.TokensOut)
	}
	if resp.StopReason != "STOP" {
		t.Errorf("StopReason = %q, want STOP", resp.StopReason)
	}
}

func TestGemini_ErrorStatus(t *testing.T) {
	c := newGemini(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := c.Complete(context.Background(), &llm.CompletionRequest{Messages: llm.UserMessage("hi")})
	if err == nil {
		t.Fatal("Complete expected error, got nil")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error %q does not mention the status", err)
	}
}

func TestGemini_NoCandidates(t *testing.T) {
	c := newGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	})

	if _, err := c.Complete(context.Background(), &llm.CompletionRequest{Messages: llm.UserMessage("hi")}); err == nil {
		t.Fatal("Complete expected error for empty candidates, got nil")
	}
}

func TestNewClient_RequiresKey(t *testing.T) {
	for _, p := range []llm.Provider{llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderGemini} {
		if _, err := llm.NewClient(p, ""); err == nil {
			t.Errorf("NewClient(%s, \"\") expected error, got nil", p)
		}
	}
}

func TestNewClient_UnknownProvider(t *testing.T) {
	if _, err := llm.NewClient("mystery", "key"); err == nil {
		t.Error("NewClient(mystery) expected error, got nil")
	}
}
