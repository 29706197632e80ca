package prompt

import (
	"context"
	"fmt"
	"strings"

	"app-builder-ai-api/internal/domain/entity"
	"app-builder-ai-api/internal/workflow/node"
)

// 对话窗口大小；更早的轮次直接丢弃
const (
	BuildWindow = 40
	ChatWindow  = 20
)

// Purpose 指令用途
type Purpose string

const (
	// PurposeChat 对话回复（interview / edit / build 摘要）
	PurposeChat Purpose = "chat"
	// PurposeBuildProject 生成项目 JSON
	PurposeBuildProject Purpose = "build_project"
)

type ComposeInput struct {
	Mode      entity.GenerationMode
	Turns     []entity.ConversationTurn
	UIContext *entity.UIElementContext
	Purpose   Purpose
}

// Composer 把对话和模式组装成发往生成服务的单条指令
type Composer struct {
	registry *Registry
}

func NewComposer(registry *Registry) *Composer {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Composer{registry: registry}
}

// Compose 纯函数：相同输入总是得到相同输出。仅在模板未注册时返回错误。
func (c *Composer) Compose(ctx context.Context, in ComposeInput) (string, error) {
	id, window := selectTemplate(in)

	vars := map[string]any{
		"conversation":      RenderConversation(node.LastN(in.Turns, window)),
		"last_user_message": entity.LastUserContent(in.Turns),
		"ui_context":        "",
	}
	if id == PromptEditV1 {
		vars["ui_context"] = RenderUIContext(in.UIContext)
	}

	tpl, err := c.registry.ChatTemplate(id)
	if err != nil {
		return "", err
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("format prompt %s: %w", id, err)
	}

	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m != nil {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func selectTemplate(in ComposeInput) (PromptID, int) {
	if in.Purpose == PurposeBuildProject {
		return PromptBuildV1, BuildWindow
	}
	switch in.Mode {
	case entity.ModeBuild:
		return PromptBuildSummaryV1, BuildWindow
	case entity.ModeEdit:
		return PromptEditV1, ChatWindow
	default:
		return PromptInterviewV1, ChatWindow
	}
}

// RenderConversation 每轮渲染为 "ROLE: content"，以换行连接
func RenderConversation(turns []entity.ConversationTurn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		role := strings.ToUpper(string(t.Role))
		if role == "" {
			role = "USER"
		}
		lines = append(lines, role+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

// RenderUIContext 渲染点选元素块；ctx 为 nil 时返回空串
func RenderUIContext(ui *entity.UIElementContext) string {
	if ui == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nUI CONTEXT (from clicked element):\n")
	b.WriteString("- selector: " + ui.Selector + "\n")
	b.WriteString("- text: " + ui.Text + "\n")
	b.WriteString("- htmlSnippet: " + ui.HTMLSnippet + "\n")
	b.WriteString("- url: " + ui.URL + "\n")
	return b.String()
}
