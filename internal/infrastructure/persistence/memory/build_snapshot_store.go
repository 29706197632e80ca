// Package memory 提供进程内存储实现，用于未启用 Redis 的部署
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"app-builder-ai-api/internal/domain/entity"
	"app-builder-ai-api/internal/domain/repository"
	"app-builder-ai-api/pkg/metrics"
)

const storeLabel = "memory"

type snapshotEntry struct {
	snapshot  *entity.BuildSnapshot
	expiresAt time.Time
}

// BuildSnapshotStore 过期条目读取时视为不存在，并在写入时顺带清理
type BuildSnapshotStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]snapshotEntry
	now     func() time.Time
}

var _ repository.BuildSnapshotRepository = (*BuildSnapshotStore)(nil)

// NewBuildSnapshotStore ttl <= 0 表示永不过期
func NewBuildSnapshotStore(ttl time.Duration) *BuildSnapshotStore {
	return &BuildSnapshotStore{
		ttl:     ttl,
		entries: make(map[string]snapshotEntry),
		now:     time.Now,
	}
}

func (s *BuildSnapshotStore) Save(_ context.Context, snapshot *entity.BuildSnapshot) error {
	if snapshot == nil || snapshot.ProjectID == "" {
		return fmt.Errorf("snapshot project id is required")
	}

	now := s.now()
	entry := snapshotEntry{snapshot: snapshot}
	if s.ttl > 0 {
		entry.expiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, id)
		}
	}
	s.entries[snapshot.ProjectID] = entry
	metrics.SnapshotOpsTotal.WithLabelValues(storeLabel, "save", "success").Inc()
	return nil
}

func (s *BuildSnapshotStore) Get(_ context.Context, projectID string) (*entity.BuildSnapshot, error) {
	s.mu.RLock()
	entry, ok := s.entries[projectID]
	s.mu.RUnlock()

	if !ok || entry.expired(s.now()) {
		metrics.SnapshotOpsTotal.WithLabelValues(storeLabel, "get", "miss").Inc()
		return nil, nil
	}
	metrics.SnapshotOpsTotal.WithLabelValues(storeLabel, "get", "hit").Inc()
	return entry.snapshot, nil
}

func (e snapshotEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
