package model

import (
	"time"

	"app-builder-ai-api/internal/domain/entity"
	"app-builder-ai-api/internal/workflow/normalize"
)

// LLMUsageMeta 一次生成调用的用量，随结果返回用于日志
type LLMUsageMeta struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	GeneratedAt      time.Time
}

// BuildGenerateInput 构建工作流输入
type BuildGenerateInput struct {
	ProjectID string
	Turns     []entity.ConversationTurn
	// Provider 为空时使用默认提供商
	Provider string
}

type BuildGenerateOutput struct {
	Result *entity.BuildResult
	Report normalize.Report
	// Raw 模型原始输出
	Raw  string
	Meta LLMUsageMeta
}

// ChatGenerateInput 对话工作流输入
type ChatGenerateInput struct {
	ProjectID string
	Mode      entity.GenerationMode
	Turns     []entity.ConversationTurn
	UIContext *entity.UIElementContext
	Provider  string
}

type ChatGenerateOutput struct {
	Content string
	Meta    LLMUsageMeta
}
