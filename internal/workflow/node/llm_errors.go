package node

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"app-builder-ai-api/internal/workflow/port"
	apperrors "app-builder-ai-api/pkg/errors"
)

// retryDelayPattern 匹配上游错误体中的 "retryDelay": "12s"
var retryDelayPattern = regexp.MustCompile(`(?i)retryDelay"\s*:\s*"(\d+)s"`)

// IsRateLimitedError 上游是否返回了配额耗尽或 429
func IsRateLimitedError(err error) bool {
	if err == nil {
		return false
	}
	var upstream *port.UpstreamError
	if errors.As(err, &upstream) && upstream.StatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(strings.ToLower(msg), "api error: 429")
}

// ParseRetryAfterSeconds 从错误信息中解析 retryDelay，解析不到返回 false
func ParseRetryAfterSeconds(msg string) (int, bool) {
	m := retryDelayPattern.FindStringSubmatch(msg)
	if len(m) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// chainErrorMarkers 编排框架包装节点错误时附加的文本
var chainErrorMarkers = []string{"[NodeRunError]", "\n------------------------\n", "node path: ["}

func hasChainMarker(msg string) bool {
	for _, m := range chainErrorMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// causeMessage 剥离编排框架的包装，返回最内层原因的文本
func causeMessage(err error) string {
	var upstream *port.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Error()
	}
	cur := err
	for hasChainMarker(cur.Error()) {
		next := errors.Unwrap(cur)
		if next == nil {
			break
		}
		cur = next
	}
	msg := cur.Error()
	if i := strings.Index(msg, "\n------------------------"); i >= 0 {
		msg = msg[:i]
	}
	return strings.TrimSpace(strings.TrimPrefix(msg, "[NodeRunError]"))
}

// ClassifyGenerationError 将生成调用失败映射为 AppError
func ClassifyGenerationError(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	msg := causeMessage(err)
	switch {
	case errors.Is(err, port.ErrProviderNotConfigured), errors.Is(err, port.ErrMissingAPIKey):
		return apperrors.Wrap(err, apperrors.CodeLLMConfigError, "llm provider misconfigured").WithDetail(msg)
	case IsRateLimitedError(err):
		seconds, ok := ParseRetryAfterSeconds(msg)
		if !ok {
			seconds = apperrors.DefaultRetryAfterSeconds
		}
		return apperrors.Wrap(err, apperrors.CodeRateLimited, "llm provider rate limited").
			WithDetail(msg).
			WithRetryAfter(seconds)
	default:
		return apperrors.Wrap(err, apperrors.CodeLLMProviderError, "llm provider call failed").WithDetail(msg)
	}
}
