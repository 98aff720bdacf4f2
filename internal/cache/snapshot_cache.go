// Package cache publishes the most recently computed engine.Metrics
// snapshot for a session under a short TTL, so an HTTP handler running
// in a different goroutine (or process) can serve it without holding a
// reference to the owning *engine.Engine. This is a live cache, not the
// persistent session storage spec.md's Non-goals exclude: entries expire
// on their own and nothing here is ever replayed back into an engine.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/dfeen87/respirosync/internal/engine"
)

// ErrMiss is returned when a session has no cached snapshot, or it has
// expired.
var ErrMiss = errors.New("respirosync/cache: miss")

// SnapshotStore persists the latest engine.Metrics snapshot per session,
// purpose-built for this domain rather than a generic string KV — tests
// can substitute an in-memory fake without touching Redis.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, sessionID string, m engine.Metrics, ttl time.Duration) error
	LoadSnapshot(ctx context.Context, sessionID string) (engine.Metrics, error)
}

// RedisSnapshotStore is the production SnapshotStore backed by go-redis.
type RedisSnapshotStore struct {
	client *redis.Client
}

// NewRedisSnapshotStore wraps an existing *redis.Client.
func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client}
}

func snapshotKey(sessionID string) string {
	return fmt.Sprintf("respirosync:session:%s:metrics", sessionID)
}

func (r *RedisSnapshotStore) SaveSnapshot(ctx context.Context, sessionID string, m engine.Metrics, ttl time.Duration) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal metrics snapshot: %w", err)
	}
	if err := r.client.Set(ctx, snapshotKey(sessionID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot cache: %w", err)
	}
	return nil
}

func (r *RedisSnapshotStore) LoadSnapshot(ctx context.Context, sessionID string) (engine.Metrics, error) {
	raw, err := r.client.Get(ctx, snapshotKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return engine.Metrics{}, ErrMiss
		}
		return engine.Metrics{}, err
	}

	var m engine.Metrics
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return engine.Metrics{}, fmt.Errorf("unmarshal metrics snapshot: %w", err)
	}
	return m, nil
}

// SnapshotCache wraps a SnapshotStore with a fixed TTL and structured
// logging for the session-manager and httpapi layers.
type SnapshotCache struct {
	store  SnapshotStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewSnapshotCache builds a SnapshotCache over store with the given TTL.
func NewSnapshotCache(store SnapshotStore, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	return &SnapshotCache{store: store, ttl: ttl, logger: logger}
}

// Publish writes m as the latest snapshot for sessionID.
func (c *SnapshotCache) Publish(ctx context.Context, sessionID string, m engine.Metrics) error {
	if err := c.store.SaveSnapshot(ctx, sessionID, m, c.ttl); err != nil {
		return fmt.Errorf("publish snapshot for session %s: %w", sessionID, err)
	}

	c.logger.Debug("published metrics snapshot",
		zap.String("session_id", sessionID),
		zap.Float32("breathing_rate_bpm", m.BreathingRateBPM),
	)
	return nil
}

// Latest reads the most recent snapshot for sessionID. Returns ErrMiss
// if none is cached or it has expired.
func (c *SnapshotCache) Latest(ctx context.Context, sessionID string) (engine.Metrics, error) {
	return c.store.LoadSnapshot(ctx, sessionID)
}
