// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"app-builder-ai-api/internal/domain/entity"
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	// RetryAfterSeconds 仅限流时返回
	RetryAfterSeconds *int `json:"retryAfterSeconds,omitempty"`
}

// ChatReply POST /api/chat 响应
type ChatReply struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ToChatReply 时间戳按 RFC3339 UTC 输出
func ToChatReply(turn *entity.ConversationTurn) ChatReply {
	return ChatReply{
		ID:        turn.ID,
		Role:      string(turn.Role),
		Content:   turn.Content,
		Timestamp: turn.Timestamp.UTC().Format(time.RFC3339),
	}
}

// BuildSnapshotResponse GET /api/projects/:pid/build 响应
type BuildSnapshotResponse struct {
	ProjectID string              `json:"projectId"`
	CreatedAt string              `json:"createdAt"`
	Build     *entity.BuildResult `json:"build"`
}

// ToBuildSnapshotResponse 转换构建快照
func ToBuildSnapshotResponse(s *entity.BuildSnapshot) BuildSnapshotResponse {
	return BuildSnapshotResponse{
		ProjectID: s.ProjectID,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
		Build:     s.Result,
	}
}
