package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptInterviewV1    PromptID = "interview_v1"
	PromptEditV1         PromptID = "edit_v1"
	PromptBuildV1        PromptID = "build_v1"
	PromptBuildSummaryV1 PromptID = "build_summary_v1"
)

// Registry 按 PromptID 缓存已解析的模板；模板使用 GoTemplate 语法，JSON 花括号无需转义
type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	path, err := resolvePromptFile(id)
	if err != nil {
		return nil, err
	}
	text, err := readEmbeddedText(path)
	if err != nil {
		return nil, err
	}

	// 上游只接受单条指令文本，整段模板作为一条 user 消息
	tpl := einoprompt.FromMessages(schema.GoTemplate, schema.UserMessage(text))
	r.cache[id] = tpl
	return tpl, nil
}

func resolvePromptFile(id PromptID) (string, error) {
	switch id {
	case PromptInterviewV1, PromptEditV1, PromptBuildV1, PromptBuildSummaryV1:
		return "templates/" + string(id) + ".txt", nil
	default:
		return "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
