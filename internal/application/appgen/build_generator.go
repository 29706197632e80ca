// Package appgen 编排构建与对话两类生成请求
package appgen

import (
	"context"
	"fmt"

	"app-builder-ai-api/internal/domain/entity"
	"app-builder-ai-api/internal/domain/repository"
	workflowchain "app-builder-ai-api/internal/workflow/chain"
	wfmodel "app-builder-ai-api/internal/workflow/model"
	wfnode "app-builder-ai-api/internal/workflow/node"
	workflowport "app-builder-ai-api/internal/workflow/port"
	workflowprompt "app-builder-ai-api/internal/workflow/prompt"
	"app-builder-ai-api/pkg/logger"
	"app-builder-ai-api/pkg/metrics"
)

// rawLogRunes 回退时记录的模型原文长度上限
const rawLogRunes = 2000

type BuildGenerator struct {
	chain *workflowchain.BuildChain
	// store 为 nil 时不保存快照
	store repository.BuildSnapshotRepository
}

func NewBuildGenerator(factory workflowport.ChatModelFactory, composer *workflowprompt.Composer, store repository.BuildSnapshotRepository) *BuildGenerator {
	return &BuildGenerator{
		chain: workflowchain.NewBuildChain(factory, composer),
		store: store,
	}
}

// Generate 调用一次生成服务并规范化结果。
// 模型输出畸形时退化为默认项目，只有上游调用失败才返回错误。
func (g *BuildGenerator) Generate(ctx context.Context, in *wfmodel.BuildGenerateInput) (*entity.BuildResult, error) {
	if g == nil || g.chain == nil {
		return nil, fmt.Errorf("build workflow not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	out, err := g.chain.Invoke(ctx, in)
	if err != nil {
		appErr := wfnode.ClassifyGenerationError(err)
		logger.Error(ctx, "build generation failed", err, "code", string(appErr.Code))
		return nil, appErr
	}

	recordReport(ctx, out)

	if g.store != nil && in.ProjectID != "" {
		if err := g.store.Save(ctx, entity.NewBuildSnapshot(in.ProjectID, out.Result)); err != nil {
			logger.Warn(ctx, "failed to save build snapshot", "error", err.Error())
		}
	}
	return out.Result, nil
}

func recordReport(ctx context.Context, out *wfmodel.BuildGenerateOutput) {
	r := out.Report
	metrics.BuildNormalizeTotal.WithLabelValues(r.Outcome()).Inc()
	metrics.BuildFileCount.Observe(float64(len(out.Result.Files)))
	if r.DroppedEntries > 0 {
		metrics.BuildDroppedEntries.Add(float64(r.DroppedEntries))
	}
	for _, p := range r.Synthesized {
		metrics.BuildSynthesizedFiles.WithLabelValues(p).Inc()
	}

	attrs := []any{
		"extraction", string(r.Extraction),
		"outcome", r.Outcome(),
		"dropped_entries", r.DroppedEntries,
		"synthesized", r.Synthesized,
		"files", len(out.Result.Files),
		"provider", out.Meta.Provider,
		"prompt_tokens", out.Meta.PromptTokens,
		"completion_tokens", out.Meta.CompletionTokens,
	}
	if r.Outcome() == "fallback" {
		attrs = append(attrs, "raw", wfnode.TruncateByRunes(out.Raw, rawLogRunes))
		logger.Warn(ctx, "build output unusable, using starter app", attrs...)
		return
	}
	logger.Info(ctx, "build normalized", attrs...)
}
