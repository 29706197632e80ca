package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"app-builder-ai-api/internal/config"
	workflowport "app-builder-ai-api/internal/workflow/port"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// EinoFactory 管理多个 Eino ChatModel 客户端实例
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

var _ workflowport.ChatModelFactory = (*EinoFactory)(nil)

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// DefaultProvider 返回默认提供商名
func (f *EinoFactory) DefaultProvider() string {
	return f.config.DefaultProvider
}

// Get 获取指定名称的 ChatModel，如果未指定则返回默认客户端
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	if name == "" {
		name = f.config.DefaultProvider
	}

	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	// 惰性加载
	f.mu.Lock()
	defer f.mu.Unlock()

	if m, ok = f.models[name]; ok {
		return m, nil
	}

	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q: %w", name, workflowport.ErrProviderNotConfigured)
	}

	chatModel, err := newChatModel(ctx, name, providerCfg)
	if err != nil {
		return nil, err
	}

	f.models[name] = chatModel
	return chatModel, nil
}

func newChatModel(ctx context.Context, name string, providerCfg config.ProviderConfig) (model.BaseChatModel, error) {
	kind := strings.ToLower(strings.TrimSpace(providerCfg.Kind))
	if kind == "" {
		kind = name
	}

	switch kind {
	case config.ProviderKindGemini:
		cm, err := NewGeminiChatModel(ctx, GeminiConfig{
			APIKey:      providerCfg.APIKey,
			BaseURL:     providerCfg.BaseURL,
			Model:       providerCfg.Model,
			MaxTokens:   providerCfg.MaxTokens,
			Temperature: optionalFloat32(providerCfg.Temperature),
			Timeout:     providerCfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return cm, nil
	case config.ProviderKindOpenAI:
		if strings.TrimSpace(providerCfg.APIKey) == "" {
			return nil, fmt.Errorf("%s: %w", name, workflowport.ErrMissingAPIKey)
		}
		cfg := &openai.ChatModelConfig{
			APIKey:      providerCfg.APIKey,
			BaseURL:     providerCfg.BaseURL,
			Model:       providerCfg.Model,
			Temperature: optionalFloat32(providerCfg.Temperature),
			Timeout:     providerCfg.Timeout,
		}
		if providerCfg.MaxTokens > 0 {
			cfg.MaxTokens = &providerCfg.MaxTokens
		}
		chatModel, err := openai.NewChatModel(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create eino chat model for %s: %w", name, err)
		}
		return chatModel, nil
	default:
		return nil, fmt.Errorf("provider %q kind %q: %w", name, kind, workflowport.ErrProviderNotConfigured)
	}
}

// optionalFloat32 温度为 0 时交给上游默认值
func optionalFloat32(f float64) *float32 {
	if f == 0 {
		return nil
	}
	v := float32(f)
	return &v
}
