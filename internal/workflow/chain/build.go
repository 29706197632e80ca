package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	wfmodel "app-builder-ai-api/internal/workflow/model"
	wfnode "app-builder-ai-api/internal/workflow/node"
	"app-builder-ai-api/internal/workflow/normalize"
	workflowport "app-builder-ai-api/internal/workflow/port"
	workflowprompt "app-builder-ai-api/internal/workflow/prompt"
)

// BuildChain template -> llm -> normalize
type BuildChain struct {
	factory  workflowport.ChatModelFactory
	composer *workflowprompt.Composer

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.BuildGenerateInput, *wfmodel.BuildGenerateOutput]
	chainErr  error
}

func NewBuildChain(factory workflowport.ChatModelFactory, composer *workflowprompt.Composer) *BuildChain {
	if composer == nil {
		composer = workflowprompt.NewComposer(nil)
	}
	return &BuildChain{factory: factory, composer: composer}
}

func (c *BuildChain) Invoke(ctx context.Context, in *wfmodel.BuildGenerateInput) (*wfmodel.BuildGenerateOutput, error) {
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

type buildChainState struct {
	In     *wfmodel.BuildGenerateInput
	Prompt string
	OutMsg *schema.Message
	Meta   wfmodel.LLMUsageMeta
}

func (c *BuildChain) getChain() (compose.Runnable[*wfmodel.BuildGenerateInput, *wfmodel.BuildGenerateOutput], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *BuildChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.BuildGenerateInput, *wfmodel.BuildGenerateOutput], error) {
	chain := compose.NewChain[*wfmodel.BuildGenerateInput, *wfmodel.BuildGenerateOutput]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.BuildGenerateInput) (*buildChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &buildChainState{In: in}, nil
		}),
		compose.WithNodeKey("build.init"),
		compose.WithNodeName("build.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *buildChainState) (*buildChainState, error) {
			prompt, err := c.composer.Compose(ctx, workflowprompt.ComposeInput{
				Turns:   st.In.Turns,
				Purpose: workflowprompt.PurposeBuildProject,
			})
			if err != nil {
				return nil, err
			}
			st.Prompt = prompt
			return st, nil
		}),
		compose.WithNodeKey("build.template"),
		compose.WithNodeName("build.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *buildChainState) (*buildChainState, error) {
			outMsg, meta, err := generateOnce(ctx, c.factory, wfnode.WorkflowBuild, st.In.Provider, st.Prompt)
			if err != nil {
				return nil, err
			}
			st.OutMsg, st.Meta = outMsg, meta
			return st, nil
		}),
		compose.WithNodeKey("build.llm"),
		compose.WithNodeName("build.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *buildChainState) (*wfmodel.BuildGenerateOutput, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			result, report := normalize.Normalize(st.OutMsg.Content)
			return &wfmodel.BuildGenerateOutput{
				Result: result,
				Report: report,
				Raw:    st.OutMsg.Content,
				Meta:   st.Meta,
			}, nil
		}),
		compose.WithNodeKey("build.normalize"),
		compose.WithNodeName("build.normalize"),
	)

	return chain.Compile(ctx)
}
