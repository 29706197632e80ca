package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"app-builder-ai-api/internal/config"
	"app-builder-ai-api/internal/infrastructure/persistence/memory"
	"app-builder-ai-api/internal/interfaces/http/handler"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "app-builder-ai-api"
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.Metrics.Path = "/metrics"
	return cfg
}

func testHandlers() Handlers {
	return Handlers{
		Health:       handler.NewHealthHandler("test", nil),
		Build:        handler.NewBuildHandler(nil),
		Chat:         handler.NewChatHandler(nil),
		ProjectBuild: handler.NewProjectBuildHandler(memory.NewBuildSnapshotStore(time.Hour)),
	}
}

func TestRouterSystemRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(testConfig(), testHandlers(), nil)

	for _, path := range []string{"/health", "/ready", "/live", "/metrics"} {
		w := httptest.NewRecorder()
		r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, w.Code)
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Errorf("GET %s missing request id", path)
		}
	}
}

func TestRouterProjectRoutesRegistered(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(testConfig(), testHandlers(), nil)

	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects/p1/build/tree", nil))
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "build not found") {
		t.Errorf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestRouterInvalidBuildBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(testConfig(), testHandlers(), nil)

	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/build", strings.NewReader("{")))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}
