// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"app-builder-ai-api/internal/domain/entity"
)

// BuildSnapshotRepository 项目构建快照存储
type BuildSnapshotRepository interface {
	// Save 覆盖保存项目最近一次构建
	Save(ctx context.Context, snapshot *entity.BuildSnapshot) error
	// Get 不存在时返回 (nil, nil)
	Get(ctx context.Context, projectID string) (*entity.BuildSnapshot, error)
}
