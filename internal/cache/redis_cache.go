package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/WiseOwlEnglish/testrun-service/internal/session"
)

const (
	snapshotKeyPrefix  = "testrun:attempt:"
	defaultSnapshotTTL = 4 * time.Hour
)

// RedisSnapshotStore persists attempt snapshots in Redis so an in-progress
// attempt survives a page reload or a service restart.
type RedisSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisSnapshotStore(client *redis.Client, logger *slog.Logger) *RedisSnapshotStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisSnapshotStore{
		client: client,
		ttl:    defaultSnapshotTTL,
		logger: logger,
	}
}

func snapshotKey(attemptID string) string {
	return snapshotKeyPrefix + attemptID
}

// SaveSnapshot writes the snapshot under the attempt key with a TTL covering
// any permitted test duration plus a resume grace window.
func (s *RedisSnapshotStore) SaveSnapshot(ctx context.Context, snap session.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey(snap.AttemptID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot, or nil when none exists.
func (s *RedisSnapshotStore) LoadSnapshot(ctx context.Context, attemptID string) (*session.Snapshot, error) {
	data, err := s.client.Get(ctx, snapshotKey(attemptID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// A corrupt snapshot should not block starting over.
		s.logger.Warn("discarding unreadable attempt snapshot",
			"attempt_id", attemptID,
			"error", err)
		return nil, nil
	}
	return &snap, nil
}

// DeleteSnapshot removes the stored snapshot after submission or abandonment.
func (s *RedisSnapshotStore) DeleteSnapshot(ctx context.Context, attemptID string) error {
	if err := s.client.Del(ctx, snapshotKey(attemptID)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
