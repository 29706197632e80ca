package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"app-builder-ai-api/internal/domain/entity"
	"app-builder-ai-api/internal/domain/repository"
	"app-builder-ai-api/pkg/metrics"
)

const storeLabel = "redis"

// BuildSnapshotStore 以 build:<projectId> 存储项目最近一次构建
type BuildSnapshotStore struct {
	client *Client
	ttl    time.Duration
	group  singleflight.Group
}

var _ repository.BuildSnapshotRepository = (*BuildSnapshotStore)(nil)

func NewBuildSnapshotStore(client *Client, ttl time.Duration) *BuildSnapshotStore {
	return &BuildSnapshotStore{client: client, ttl: ttl}
}

// BuildSnapshotKey 快照键
func BuildSnapshotKey(projectID string) string {
	return "build:" + projectID
}

func (s *BuildSnapshotStore) Save(ctx context.Context, snapshot *entity.BuildSnapshot) error {
	if snapshot == nil || snapshot.ProjectID == "" {
		return fmt.Errorf("snapshot project id is required")
	}
	b, err := json.Marshal(snapshot)
	if err != nil {
		metrics.SnapshotOpsTotal.WithLabelValues(storeLabel, "save", "error").Inc()
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, BuildSnapshotKey(snapshot.ProjectID), b, s.ttl); err != nil {
		metrics.SnapshotOpsTotal.WithLabelValues(storeLabel, "save", "error").Inc()
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	metrics.SnapshotOpsTotal.WithLabelValues(storeLabel, "save", "success").Inc()
	return nil
}

// Get 同一项目的并发读取合并为一次 Redis 访问
func (s *BuildSnapshotStore) Get(ctx context.Context, projectID string) (*entity.BuildSnapshot, error) {
	key := BuildSnapshotKey(projectID)
	ctx, span := tracer.Start(ctx, "snapshot.Get", trace.WithAttributes(attribute.String("snapshot.key", key)))
	defer span.End()

	// 共享结果不受首个调用方取消影响
	sfCtx := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		b, err := s.client.Get(sfCtx, key)
		if err != nil {
			if IsNil(err) {
				return nil, nil
			}
			return nil, err
		}
		var snap entity.BuildSnapshot
		if err := json.Unmarshal(b, &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		return &snap, nil
	})
	span.SetAttributes(attribute.Bool("singleflight.shared", shared))
	if err != nil {
		span.RecordError(err)
		metrics.SnapshotOpsTotal.WithLabelValues(storeLabel, "get", "error").Inc()
		return nil, err
	}
	if v == nil {
		metrics.SnapshotOpsTotal.WithLabelValues(storeLabel, "get", "miss").Inc()
		return nil, nil
	}
	metrics.SnapshotOpsTotal.WithLabelValues(storeLabel, "get", "hit").Inc()
	return v.(*entity.BuildSnapshot), nil
}
