package chain

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	wfmodel "app-builder-ai-api/internal/workflow/model"
	wfnode "app-builder-ai-api/internal/workflow/node"
	workflowport "app-builder-ai-api/internal/workflow/port"
)

// generateOnce 单次调用生成服务，不做重试
func generateOnce(ctx context.Context, factory workflowport.ChatModelFactory, workflow, provider, prompt string) (*schema.Message, wfmodel.LLMUsageMeta, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		provider = factory.DefaultProvider()
	}
	meta := wfmodel.LLMUsageMeta{Provider: provider}

	ctx = wfnode.WithWorkflowProvider(ctx, workflow, provider)
	chatModel, err := factory.Get(ctx, provider)
	if err != nil {
		return nil, meta, err
	}

	outMsg, err := chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return nil, meta, err
	}
	if outMsg == nil || strings.TrimSpace(outMsg.Content) == "" {
		return nil, meta, workflowport.ErrEmptyResponse
	}

	meta.GeneratedAt = time.Now().UTC()
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		meta.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
		meta.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
	}
	if named, ok := chatModel.(interface{ ModelName() string }); ok {
		meta.Model = named.ModelName()
	}
	return outMsg, meta, nil
}
