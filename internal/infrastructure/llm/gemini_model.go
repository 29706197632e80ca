package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	workflowport "app-builder-ai-api/internal/workflow/port"
)

const geminiProviderName = "gemini"

// GeminiConfig Gemini generateContent 配置
type GeminiConfig struct {
	APIKey string
	// BaseURL 为空时使用 SDK 默认地址，API 版本由 SDK 追加
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature *float32
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// GeminiChatModel 包装 eino-ext gemini 组件，把 SDK 错误转换为 UpstreamError
type GeminiChatModel struct {
	inner model.BaseChatModel
	model string
}

// NewGeminiChatModel 缺少 API Key 时直接返回 ErrMissingAPIKey，不创建客户端
func NewGeminiChatModel(ctx context.Context, cfg GeminiConfig) (*GeminiChatModel, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: %w", workflowport.ErrMissingAPIKey)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions.BaseURL = strings.TrimRight(base, "/") + "/"
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	modelCfg := &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	}
	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		modelCfg.MaxTokens = &maxTokens
	}
	inner, err := gemini.NewChatModel(ctx, modelCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for gemini: %w", err)
	}
	return &GeminiChatModel{inner: inner, model: cfg.Model}, nil
}

func (m *GeminiChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	out, err := m.inner.Generate(ctx, input, opts...)
	if err != nil {
		return nil, toUpstreamError(err)
	}
	return out, nil
}

func (m *GeminiChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	sr, err := m.inner.Stream(ctx, input, opts...)
	if err != nil {
		return nil, toUpstreamError(err)
	}
	return sr, nil
}

func (m *GeminiChatModel) ModelName() string { return m.model }

// toUpstreamError 按 REST 错误体格式重建 genai.APIError，保留 status 与 retryDelay
func toUpstreamError(err error) error {
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		apiErr = *apiErrPtr
	default:
		return err
	}

	body, mErr := json.Marshal(map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
			"status":  apiErr.Status,
			"details": apiErr.Details,
		},
	})
	if mErr != nil {
		body = []byte(apiErr.Error())
	}
	return &workflowport.UpstreamError{
		Provider:   geminiProviderName,
		StatusCode: apiErr.Code,
		Body:       string(body),
	}
}
