package appgen

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"app-builder-ai-api/internal/domain/entity"
	workflowchain "app-builder-ai-api/internal/workflow/chain"
	wfmodel "app-builder-ai-api/internal/workflow/model"
	wfnode "app-builder-ai-api/internal/workflow/node"
	workflowport "app-builder-ai-api/internal/workflow/port"
	workflowprompt "app-builder-ai-api/internal/workflow/prompt"
	"app-builder-ai-api/pkg/logger"
)

type ChatGenerator struct {
	chain *workflowchain.ChatChain
	now   func() time.Time
	newID func() string
}

func NewChatGenerator(factory workflowport.ChatModelFactory, composer *workflowprompt.Composer) *ChatGenerator {
	return &ChatGenerator{
		chain: workflowchain.NewChatChain(factory, composer),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Reply 生成助手的下一条回复
func (g *ChatGenerator) Reply(ctx context.Context, in *wfmodel.ChatGenerateInput) (*entity.ConversationTurn, error) {
	if g == nil || g.chain == nil {
		return nil, fmt.Errorf("chat workflow not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	out, err := g.chain.Invoke(ctx, in)
	if err != nil {
		appErr := wfnode.ClassifyGenerationError(err)
		logger.Error(ctx, "chat generation failed", err, "code", string(appErr.Code))
		return nil, appErr
	}

	logger.Info(ctx, "chat reply generated",
		"provider", out.Meta.Provider,
		"prompt_tokens", out.Meta.PromptTokens,
		"completion_tokens", out.Meta.CompletionTokens,
	)
	return entity.NewAssistantTurn(g.newID(), out.Content, g.now()), nil
}
