package appgen

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"app-builder-ai-api/internal/domain/entity"
	"app-builder-ai-api/internal/infrastructure/persistence/memory"
	wfmodel "app-builder-ai-api/internal/workflow/model"
	workflowport "app-builder-ai-api/internal/workflow/port"
	apperrors "app-builder-ai-api/pkg/errors"
	"app-builder-ai-api/pkg/logger"
)

type stubModel struct {
	reply string
	err   error
}

func (m *stubModel) Generate(context.Context, []*schema.Message, ...model.Option) (*schema.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *stubModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, in, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

type stubFactory struct{ m model.BaseChatModel }

func (f stubFactory) Get(context.Context, string) (model.BaseChatModel, error) { return f.m, nil }
func (f stubFactory) DefaultProvider() string                                  { return "gemini" }

type failingStore struct{}

func (failingStore) Save(context.Context, *entity.BuildSnapshot) error { return errors.New("down") }
func (failingStore) Get(context.Context, string) (*entity.BuildSnapshot, error) {
	return nil, errors.New("down")
}

func TestBuildGeneratorSavesSnapshot(t *testing.T) {
	store := memory.NewBuildSnapshotStore(time.Hour)
	g := NewBuildGenerator(stubFactory{&stubModel{reply: `{"blueprint":{"app_name":"Shop"},"files":[]}`}}, nil, store)

	res, err := g.Generate(context.Background(), &wfmodel.BuildGenerateInput{ProjectID: "p1"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Blueprint.AppName != "Shop" {
		t.Errorf("app name = %q", res.Blueprint.AppName)
	}

	snap, _ := store.Get(context.Background(), "p1")
	if snap == nil || snap.Result != res {
		t.Fatal("snapshot not saved")
	}
}

func TestBuildGeneratorFallbackAndStoreFailure(t *testing.T) {
	g := NewBuildGenerator(stubFactory{&stubModel{reply: "no json here"}}, nil, failingStore{})

	res, err := g.Generate(context.Background(), &wfmodel.BuildGenerateInput{ProjectID: "p1"})
	if err != nil {
		t.Fatalf("store failure must not fail the build: %v", err)
	}
	if res.Blueprint.AppName != entity.DefaultAppName {
		t.Errorf("app name = %q", res.Blueprint.AppName)
	}
}

func TestBuildGeneratorWithoutStore(t *testing.T) {
	g := NewBuildGenerator(stubFactory{&stubModel{reply: "{}"}}, nil, nil)
	if _, err := g.Generate(context.Background(), &wfmodel.BuildGenerateInput{ProjectID: "p1"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

func TestBuildGeneratorRateLimited(t *testing.T) {
	upstream := &workflowport.UpstreamError{
		Provider:   "gemini",
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"status":"RESOURCE_EXHAUSTED","retryDelay":"12s"}`,
	}
	g := NewBuildGenerator(stubFactory{&stubModel{err: upstream}}, nil, nil)

	_, err := g.Generate(context.Background(), &wfmodel.BuildGenerateInput{})
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeRateLimited || appErr.RetryAfterSeconds != 12 {
		t.Fatalf("err = %+v", appErr)
	}
}

func TestChatGeneratorReply(t *testing.T) {
	g := NewChatGenerator(stubFactory{&stubModel{reply: "Who will use the app?"}}, nil)
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("X", 3600))
	g.now = func() time.Time { return fixed }
	g.newID = func() string { return "id-1" }

	turn, err := g.Reply(context.Background(), &wfmodel.ChatGenerateInput{Mode: entity.ModeInterview})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if turn.ID != "id-1" || turn.Role != entity.RoleAssistant || turn.Content != "Who will use the app?" {
		t.Errorf("turn = %+v", turn)
	}
	if turn.Timestamp.Location() != time.UTC || !turn.Timestamp.Equal(fixed) {
		t.Errorf("timestamp = %v", turn.Timestamp)
	}
}

func TestChatGeneratorLogsModeOnce(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, "info", "json")
	t.Cleanup(func() { logger.InitWithWriter(io.Discard, "info", "json") })

	ctx := logger.WithContext(context.Background(), logger.ModeKey, string(entity.ModeInterview))
	ok := NewChatGenerator(stubFactory{&stubModel{reply: "hi"}}, nil)
	if _, err := ok.Reply(ctx, &wfmodel.ChatGenerateInput{Mode: entity.ModeInterview}); err != nil {
		t.Fatal(err)
	}
	failing := NewChatGenerator(stubFactory{&stubModel{err: errors.New("boom")}}, nil)
	_, _ = failing.Reply(ctx, &wfmodel.ChatGenerateInput{Mode: entity.ModeInterview})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected info and error lines, got %q", buf.String())
	}
	for _, line := range lines {
		if n := strings.Count(line, `"mode":`); n != 1 {
			t.Errorf("mode appears %d times in %s", n, line)
		}
	}
}

func TestChatGeneratorConfigError(t *testing.T) {
	g := NewChatGenerator(stubFactory{&stubModel{err: workflowport.ErrMissingAPIKey}}, nil)
	_, err := g.Reply(context.Background(), &wfmodel.ChatGenerateInput{})
	if got := apperrors.AsAppError(err); got.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("status = %d", got.HTTPStatus)
	}
}

func TestArchive(t *testing.T) {
	files := []entity.ProjectFile{
		{Path: "index.html", Content: "<html></html>"},
		{Path: "src/App.jsx", Content: "app"},
		{Path: "../evil", Content: "x"},
	}
	b, err := Archive(files, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatalf("invalid zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("entries = %d, want 2", len(zr.File))
	}
	rc, _ := zr.File[1].Open()
	content, _ := io.ReadAll(rc)
	_ = rc.Close()
	if zr.File[1].Name != "src/App.jsx" || string(content) != "app" {
		t.Errorf("entry = %s %q", zr.File[1].Name, content)
	}
}

func TestArchiveName(t *testing.T) {
	if got := ArchiveName(entity.Blueprint{AppName: "My Cool App!!"}); got != "my-cool-app.zip" {
		t.Errorf("got %q", got)
	}
}

func TestBuildFileTree(t *testing.T) {
	tree := BuildFileTree([]entity.ProjectFile{
		{Path: "package.json"},
		{Path: "src/main.jsx"},
		{Path: "index.html"},
		{Path: "src/components/Nav.jsx"},
		{Path: "src/App.jsx"},
	})

	names := func(nodes []*FileNode) []string {
		out := make([]string, len(nodes))
		for i, n := range nodes {
			out[i] = n.Name
		}
		return out
	}

	if got := names(tree); !equal(got, []string{"src", "index.html", "package.json"}) {
		t.Fatalf("root = %v", got)
	}
	src := tree[0]
	if src.Type != NodeTypeDir || src.Path != "src" {
		t.Errorf("src = %+v", src)
	}
	if got := names(src.Children); !equal(got, []string{"components", "App.jsx", "main.jsx"}) {
		t.Errorf("src children = %v", got)
	}
	if nav := src.Children[0].Children[0]; nav.Path != "src/components/Nav.jsx" || nav.Type != NodeTypeFile {
		t.Errorf("nav = %+v", nav)
	}
	if empty := BuildFileTree(nil); empty == nil || len(empty) != 0 {
		t.Errorf("empty tree = %#v", empty)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
