package handler

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"app-builder-ai-api/internal/domain/entity"
	"app-builder-ai-api/internal/infrastructure/persistence/memory"
	wfmodel "app-builder-ai-api/internal/workflow/model"
	"app-builder-ai-api/internal/workflow/port"
	apperrors "app-builder-ai-api/pkg/errors"
)

type fakeBuilder struct {
	got    *wfmodel.BuildGenerateInput
	result *entity.BuildResult
	err    error
}

func (f *fakeBuilder) Generate(_ context.Context, in *wfmodel.BuildGenerateInput) (*entity.BuildResult, error) {
	f.got = in
	return f.result, f.err
}

type fakeResponder struct {
	got  *wfmodel.ChatGenerateInput
	turn *entity.ConversationTurn
	err  error
}

func (f *fakeResponder) Reply(_ context.Context, in *wfmodel.ChatGenerateInput) (*entity.ConversationTurn, error) {
	f.got = in
	return f.turn, f.err
}

type fakeChecker struct{ err error }

func (f fakeChecker) HealthCheck(context.Context) error { return f.err }

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

func sampleResult() *entity.BuildResult {
	return &entity.BuildResult{
		Blueprint: entity.Blueprint{AppName: "Todo App", Pages: []string{"Home"}},
		Files: []entity.ProjectFile{
			{Path: "src/App.tsx", Content: "export default function App() {}"},
			{Path: "package.json", Content: "{}"},
		},
		PreviewHTML: "<!doctype html><title>Todo App</title>",
	}
}

func TestBuildSuccess(t *testing.T) {
	builder := &fakeBuilder{result: sampleResult()}
	r := newEngine()
	r.POST("/api/build", NewBuildHandler(builder).Build)

	w := do(r, http.MethodPost, "/api/build", `{"projectId":"p1","messages":[{"role":"user","content":"todo"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if _, ok := body["zipUrl"]; !ok || body["zipUrl"] != nil {
		t.Errorf("zipUrl should be present and null, body=%v", body)
	}
	if body["previewHtml"] == "" {
		t.Error("previewHtml missing")
	}
	if builder.got.ProjectID != "p1" || len(builder.got.Turns) != 1 {
		t.Errorf("generator input = %+v", builder.got)
	}
}

func TestBuildInvalidBody(t *testing.T) {
	r := newEngine()
	r.POST("/api/build", NewBuildHandler(&fakeBuilder{}).Build)

	w := do(r, http.MethodPost, "/api/build", `not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if decode(t, w)["error"] != "invalid request body" {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestBuildRateLimited(t *testing.T) {
	upstream := &port.UpstreamError{
		Provider:   "gemini",
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error":{"status":"RESOURCE_EXHAUSTED","details":[{"retryDelay": "12s"}]}}`,
	}
	r := newEngine()
	r.POST("/api/build", NewBuildHandler(&fakeBuilder{err: upstream}).Build)

	w := do(r, http.MethodPost, "/api/build", `{"messages":[]}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "12" {
		t.Errorf("Retry-After = %q", got)
	}
	body := decode(t, w)
	if body["error"] != "RATE_LIMITED" || body["retryAfterSeconds"] != float64(12) {
		t.Errorf("body = %v", body)
	}
	if !strings.Contains(fmt.Sprint(body["details"]), "RESOURCE_EXHAUSTED") {
		t.Errorf("details = %v", body["details"])
	}
}

func TestBuildRateLimitedDefaultRetry(t *testing.T) {
	r := newEngine()
	r.POST("/api/build", NewBuildHandler(&fakeBuilder{err: errors.New("gemini api error: 429 - quota")}).Build)

	w := do(r, http.MethodPost, "/api/build", `{}`)
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "60" {
		t.Fatalf("status = %d Retry-After = %q", w.Code, w.Header().Get("Retry-After"))
	}
}

func TestBuildFailureMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"missing key", fmt.Errorf("gemini: %w", port.ErrMissingAPIKey)},
		{"transport", errors.New("dial tcp: connection refused")},
		{"app error", apperrors.New(apperrors.CodeLLMProviderError, "llm provider call failed").WithDetail("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine()
			r.POST("/api/build", NewBuildHandler(&fakeBuilder{err: tt.err}).Build)

			w := do(r, http.MethodPost, "/api/build", `{}`)
			if w.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d", w.Code)
			}
			body := decode(t, w)
			if body["error"] != "Failed to generate app" || body["details"] == "" {
				t.Errorf("body = %v", body)
			}
			if _, ok := body["retryAfterSeconds"]; ok {
				t.Errorf("retryAfterSeconds should be absent, body = %v", body)
			}
		})
	}
}

func TestChatSuccess(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("X", 3600))
	responder := &fakeResponder{turn: entity.NewAssistantTurn("id-1", "What pages do you need?", at)}
	r := newEngine()
	r.POST("/api/chat", NewChatHandler(responder).Chat)

	w := do(r, http.MethodPost, "/api/chat", `{
		"projectId": "p1",
		"mode": "edit",
		"messages": [{"role":"user","content":"make it blue"}],
		"uiContext": {"selector":"#hero","text":"Welcome"}
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["id"] != "id-1" || body["role"] != "assistant" || body["content"] != "What pages do you need?" {
		t.Errorf("body = %v", body)
	}
	if body["timestamp"] != "2026-03-01T08:30:00Z" {
		t.Errorf("timestamp = %v", body["timestamp"])
	}
	if responder.got.Mode != entity.ModeEdit || responder.got.UIContext == nil || responder.got.UIContext.Selector != "#hero" {
		t.Errorf("responder input = %+v", responder.got)
	}
}

func TestChatFailure(t *testing.T) {
	r := newEngine()
	r.POST("/api/chat", NewChatHandler(&fakeResponder{err: fmt.Errorf("x: %w", port.ErrProviderNotConfigured)}).Chat)

	w := do(r, http.MethodPost, "/api/chat", `{"messages":[]}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if decode(t, w)["error"] != "Failed to generate response" {
		t.Errorf("body = %s", w.Body.String())
	}
}

func newProjectEngine(h *ProjectBuildHandler) *gin.Engine {
	r := newEngine()
	r.GET("/api/projects/:pid/build", h.GetBuild)
	r.GET("/api/projects/:pid/preview", h.GetPreview)
	r.GET("/api/projects/:pid/build/archive", h.GetArchive)
	r.GET("/api/projects/:pid/build/tree", h.GetTree)
	return r
}

func TestProjectBuildEndpoints(t *testing.T) {
	store := memory.NewBuildSnapshotStore(time.Hour)
	if err := store.Save(context.Background(), entity.NewBuildSnapshot("p1", sampleResult())); err != nil {
		t.Fatalf("Save: %v", err)
	}
	r := newProjectEngine(NewProjectBuildHandler(store))

	w := do(r, http.MethodGet, "/api/projects/p1/build", "")
	if w.Code != http.StatusOK {
		t.Fatalf("build status = %d", w.Code)
	}
	if body := decode(t, w); body["projectId"] != "p1" || body["build"] == nil {
		t.Errorf("build body = %v", body)
	}

	w = do(r, http.MethodGet, "/api/projects/p1/preview", "")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("preview status = %d type = %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "<title>Todo App</title>") {
		t.Errorf("preview body = %s", w.Body.String())
	}

	w = do(r, http.MethodGet, "/api/projects/p1/build/archive", "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/zip" {
		t.Fatalf("archive status = %d type = %q", w.Code, w.Header().Get("Content-Type"))
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="todo-app.zip"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Errorf("zip entries = %d", len(zr.File))
	}

	w = do(r, http.MethodGet, "/api/projects/p1/build/tree", "")
	if w.Code != http.StatusOK {
		t.Fatalf("tree status = %d", w.Code)
	}
	tree, _ := decode(t, w)["tree"].([]any)
	if len(tree) != 2 {
		t.Errorf("tree = %v", tree)
	}
}

func TestProjectBuildNotFound(t *testing.T) {
	for name, h := range map[string]*ProjectBuildHandler{
		"empty store": NewProjectBuildHandler(memory.NewBuildSnapshotStore(time.Hour)),
		"no store":    NewProjectBuildHandler(nil),
	} {
		t.Run(name, func(t *testing.T) {
			r := newProjectEngine(h)
			for _, path := range []string{"/build", "/preview", "/build/archive", "/build/tree"} {
				w := do(r, http.MethodGet, "/api/projects/missing"+path, "")
				if w.Code != http.StatusNotFound {
					t.Errorf("%s status = %d", path, w.Code)
					continue
				}
				if decode(t, w)["error"] != "build not found" {
					t.Errorf("%s body = %s", path, w.Body.String())
				}
			}
		})
	}
}

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name    string
		checker HealthChecker
		want    int
	}{
		{"redis disabled", nil, http.StatusOK},
		{"redis ok", fakeChecker{}, http.StatusOK},
		{"redis down", fakeChecker{err: errors.New("refused")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("v1.0.0", tt.checker)
			r := newEngine()
			r.GET("/ready", h.Ready)
			r.GET("/health", h.Health)

			if w := do(r, http.MethodGet, "/ready", ""); w.Code != tt.want {
				t.Errorf("ready status = %d, want %d", w.Code, tt.want)
			}
			w := do(r, http.MethodGet, "/health", "")
			if body := decode(t, w); body["version"] != "v1.0.0" {
				t.Errorf("health body = %v", body)
			}
		})
	}
}
