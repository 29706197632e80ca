package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	wfmodel "app-builder-ai-api/internal/workflow/model"
	wfnode "app-builder-ai-api/internal/workflow/node"
	workflowport "app-builder-ai-api/internal/workflow/port"
	workflowprompt "app-builder-ai-api/internal/workflow/prompt"
)

// ChatChain template -> llm，模型输出原样作为回复
type ChatChain struct {
	factory  workflowport.ChatModelFactory
	composer *workflowprompt.Composer

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.ChatGenerateInput, *wfmodel.ChatGenerateOutput]
	chainErr  error
}

func NewChatChain(factory workflowport.ChatModelFactory, composer *workflowprompt.Composer) *ChatChain {
	if composer == nil {
		composer = workflowprompt.NewComposer(nil)
	}
	return &ChatChain{factory: factory, composer: composer}
}

func (c *ChatChain) Invoke(ctx context.Context, in *wfmodel.ChatGenerateInput) (*wfmodel.ChatGenerateOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type chatChainState struct {
	In     *wfmodel.ChatGenerateInput
	Prompt string
	OutMsg *schema.Message
	Meta   wfmodel.LLMUsageMeta
}

func (c *ChatChain) getChain() (compose.Runnable[*wfmodel.ChatGenerateInput, *wfmodel.ChatGenerateOutput], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *ChatChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.ChatGenerateInput, *wfmodel.ChatGenerateOutput], error) {
	chain := compose.NewChain[*wfmodel.ChatGenerateInput, *wfmodel.ChatGenerateOutput]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.ChatGenerateInput) (*chatChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &chatChainState{In: in}, nil
		}),
		compose.WithNodeKey("chat.init"),
		compose.WithNodeName("chat.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *chatChainState) (*chatChainState, error) {
			prompt, err := c.composer.Compose(ctx, workflowprompt.ComposeInput{
				Mode:      st.In.Mode,
				Turns:     st.In.Turns,
				UIContext: st.In.UIContext,
				Purpose:   workflowprompt.PurposeChat,
			})
			if err != nil {
				return nil, err
			}
			st.Prompt = prompt
			return st, nil
		}),
		compose.WithNodeKey("chat.template"),
		compose.WithNodeName("chat.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *chatChainState) (*chatChainState, error) {
			outMsg, meta, err := generateOnce(ctx, c.factory, wfnode.WorkflowChat, st.In.Provider, st.Prompt)
			if err != nil {
				return nil, err
			}
			st.OutMsg, st.Meta = outMsg, meta
			return st, nil
		}),
		compose.WithNodeKey("chat.llm"),
		compose.WithNodeName("chat.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *chatChainState) (*wfmodel.ChatGenerateOutput, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return &wfmodel.ChatGenerateOutput{
				Content: st.OutMsg.Content,
				Meta:    st.Meta,
			}, nil
		}),
		compose.WithNodeKey("chat.finalize"),
		compose.WithNodeName("chat.finalize"),
	)

	return chain.Compile(ctx)
}
