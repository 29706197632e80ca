package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"app-builder-ai-api/internal/config"
	wfnode "app-builder-ai-api/internal/workflow/node"
	workflowport "app-builder-ai-api/internal/workflow/port"
)

const exhaustedBody = `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED","details":[{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"12s"}]}}`

func newTestGemini(t *testing.T, srv *httptest.Server) *GeminiChatModel {
	t.Helper()
	m, err := NewGeminiChatModel(context.Background(), GeminiConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		Model:      "gemini-test",
		MaxTokens:  256,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewGeminiChatModel: %v", err)
	}
	return m
}

func TestGeminiGenerate(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": "hello there"}}},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]any{"promptTokenCount": 5, "candidatesTokenCount": 3, "totalTokenCount": 8},
		})
	}))
	defer srv.Close()

	m := newTestGemini(t, srv)
	out, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasSuffix(gotPath, "/models/gemini-test:generateContent") {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if out.Content != "hello there" {
		t.Errorf("content = %q", out.Content)
	}
	if out.ResponseMeta == nil || out.ResponseMeta.Usage == nil || out.ResponseMeta.Usage.PromptTokens != 5 {
		t.Errorf("usage = %+v", out.ResponseMeta)
	}
	if m.ModelName() != "gemini-test" {
		t.Errorf("model name = %q", m.ModelName())
	}
}

func TestGeminiRateLimitedMapsToUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(exhaustedBody))
	}))
	defer srv.Close()

	_, err := newTestGemini(t, srv).Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	var upstream *workflowport.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if upstream.Provider != "gemini" || upstream.StatusCode != http.StatusTooManyRequests {
		t.Errorf("upstream = %+v", upstream)
	}

	appErr := wfnode.ClassifyGenerationError(err)
	if appErr.HTTPStatus != http.StatusTooManyRequests || appErr.RetryAfterSeconds != 12 {
		t.Errorf("classified = %+v", appErr)
	}
}

func TestToUpstreamError(t *testing.T) {
	apiErr := genai.APIError{
		Code:    429,
		Message: "quota exceeded",
		Status:  "RESOURCE_EXHAUSTED",
		Details: []map[string]any{{"@type": "type.googleapis.com/google.rpc.RetryInfo", "retryDelay": "12s"}},
	}

	for name, in := range map[string]error{"value": apiErr, "pointer": &apiErr} {
		t.Run(name, func(t *testing.T) {
			var upstream *workflowport.UpstreamError
			if !errors.As(toUpstreamError(in), &upstream) {
				t.Fatal("expected UpstreamError")
			}
			if upstream.StatusCode != 429 {
				t.Errorf("status = %d", upstream.StatusCode)
			}
			if !strings.Contains(upstream.Body, "RESOURCE_EXHAUSTED") || !strings.Contains(upstream.Body, `"retryDelay":"12s"`) {
				t.Errorf("body = %s", upstream.Body)
			}
			if n, ok := wfnode.ParseRetryAfterSeconds(upstream.Body); !ok || n != 12 {
				t.Errorf("retry after = %d %v", n, ok)
			}
		})
	}

	plain := errors.New("dial tcp: refused")
	if got := toUpstreamError(plain); got != plain {
		t.Errorf("non-api error should pass through, got %v", got)
	}
}

func TestGeminiServerErrorIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	}))
	defer srv.Close()

	_, err := newTestGemini(t, srv).Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	var upstream *workflowport.UpstreamError
	if !errors.As(err, &upstream) || upstream.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("err = %v", err)
	}
	if got := wfnode.ClassifyGenerationError(err); got.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("status = %d", got.HTTPStatus)
	}
}

func TestGeminiMissingAPIKey(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	_, err := NewGeminiChatModel(context.Background(), GeminiConfig{APIKey: "  ", BaseURL: srv.URL, Model: "gemini-test"})
	if !errors.Is(err, workflowport.ErrMissingAPIKey) {
		t.Fatalf("err = %v", err)
	}
	if hits.Load() != 0 {
		t.Error("no request should be sent without a key")
	}
}

func TestEinoFactory(t *testing.T) {
	cfg := &config.Config{LLM: config.LLMConfig{
		DefaultProvider: "gemini",
		Providers: map[string]config.ProviderConfig{
			"gemini": {Kind: config.ProviderKindGemini, APIKey: "k", BaseURL: "http://localhost", Model: "gemini-2.5-flash"},
			"odd":    {Kind: "carrier-pigeon"},
			"oa":     {Kind: config.ProviderKindOpenAI},
			"gk":     {Kind: config.ProviderKindGemini, Model: "gemini-2.5-flash"},
		},
	}}
	f := NewEinoFactory(cfg)

	m1, err := f.Get(context.Background(), "")
	if err != nil {
		t.Fatalf("Get default: %v", err)
	}
	m2, _ := f.Get(context.Background(), "gemini")
	if m1 != m2 {
		t.Error("models should be cached per provider")
	}
	if _, ok := m1.(*GeminiChatModel); !ok {
		t.Errorf("default model type = %T", m1)
	}

	if _, err := f.Get(context.Background(), "missing"); !errors.Is(err, workflowport.ErrProviderNotConfigured) {
		t.Errorf("missing provider err = %v", err)
	}
	if _, err := f.Get(context.Background(), "odd"); !errors.Is(err, workflowport.ErrProviderNotConfigured) {
		t.Errorf("unknown kind err = %v", err)
	}
	if _, err := f.Get(context.Background(), "oa"); !errors.Is(err, workflowport.ErrMissingAPIKey) {
		t.Errorf("openai without key err = %v", err)
	}
	if _, err := f.Get(context.Background(), "gk"); !errors.Is(err, workflowport.ErrMissingAPIKey) {
		t.Errorf("gemini without key err = %v", err)
	}
	if f.DefaultProvider() != "gemini" {
		t.Errorf("default provider = %q", f.DefaultProvider())
	}
}
