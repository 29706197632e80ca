package port

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 定义工作流层对 LLM ChatModel 的最小依赖（port）。
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
	// DefaultProvider 返回未显式指定时使用的提供商名
	DefaultProvider() string
}

var (
	ErrProviderNotConfigured = errors.New("llm provider not configured")
	ErrMissingAPIKey         = errors.New("llm provider api key is missing")
	ErrEmptyResponse         = errors.New("no valid response from llm provider")
)

// UpstreamError 上游生成服务返回了非 2xx
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s api error: %d - %s", e.Provider, e.StatusCode, e.Body)
}
