// Package entity 定义领域实体
package entity

import (
	"strings"
	"time"
)

// Role 对话角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// GenerationMode 单次请求的生成模式，决定模板与对话窗口大小
type GenerationMode string

const (
	ModeInterview GenerationMode = "interview"
	ModeBuild     GenerationMode = "build"
	ModeEdit      GenerationMode = "edit"
)

// ParseGenerationMode 解析模式；无法识别的值一律按 interview 处理
func ParseGenerationMode(s string) GenerationMode {
	switch GenerationMode(strings.TrimSpace(s)) {
	case ModeBuild:
		return ModeBuild
	case ModeEdit:
		return ModeEdit
	default:
		return ModeInterview
	}
}

// ConversationTurn 对话中的一轮，按插入顺序排列
type ConversationTurn struct {
	ID        string    `json:"id,omitempty"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAssistantTurn 创建助手回复
func NewAssistantTurn(id, content string, at time.Time) *ConversationTurn {
	return &ConversationTurn{
		ID:        id,
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: at.UTC(),
	}
}

// LastUserContent 返回最后一条用户消息的内容
func LastUserContent(turns []ConversationTurn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleUser {
			return turns[i].Content
		}
	}
	return ""
}

// UIElementContext 编辑模式下用户点选的页面元素
type UIElementContext struct {
	Selector    string `json:"selector"`
	Text        string `json:"text"`
	HTMLSnippet string `json:"htmlSnippet"`
	URL         string `json:"url"`
}
