package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"app-builder-ai-api/internal/domain/entity"
	"app-builder-ai-api/internal/interfaces/http/dto"
	wfmodel "app-builder-ai-api/internal/workflow/model"
	wfnode "app-builder-ai-api/internal/workflow/node"
	"app-builder-ai-api/pkg/logger"
)

// AppBuilder 生成完整项目
type AppBuilder interface {
	Generate(ctx context.Context, in *wfmodel.BuildGenerateInput) (*entity.BuildResult, error)
}

// ChatResponder 生成下一条助手回复
type ChatResponder interface {
	Reply(ctx context.Context, in *wfmodel.ChatGenerateInput) (*entity.ConversationTurn, error)
}

const (
	errBuildFailed    = "Failed to generate app"
	errChatFailed     = "Failed to generate response"
	errRateLimited    = "RATE_LIMITED"
	errInvalidBody    = "invalid request body"
	errBuildNotFound  = "build not found"
	errBuildLoadError = "failed to load build"
)

// withProject 把 project_id 写入日志上下文
func withProject(c *gin.Context, projectID string) context.Context {
	ctx := c.Request.Context()
	if projectID != "" {
		ctx = logger.WithContext(ctx, logger.ProjectIDKey, projectID)
		c.Request = c.Request.WithContext(ctx)
	}
	return ctx
}

func writeError(c *gin.Context, status int, msg, details string) {
	c.JSON(status, dto.ErrorResponse{Error: msg, Details: details})
}

// writeGenerationError 限流映射为 429 + Retry-After，其余按错误码映射状态
func writeGenerationError(c *gin.Context, failMsg string, err error) {
	appErr := wfnode.ClassifyGenerationError(err)

	if appErr.IsRateLimited() {
		seconds := appErr.RetryAfterSeconds
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
			Error:             errRateLimited,
			Details:           appErr.Detail,
			RetryAfterSeconds: &seconds,
		})
		return
	}

	status := appErr.HTTPStatus
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	details := appErr.Detail
	if details == "" {
		details = err.Error()
	}
	writeError(c, status, failMsg, details)
}
