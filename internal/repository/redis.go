package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dan9191/trust-score-service/internal/models"
)

const snapshotKeyPrefix = "trust:snapshot:"

// RedisRepository stores each snapshot as a JSON string under trust:snapshot:<session>
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration // zero keeps keys forever
}

// NewRedisRepository wraps a go-redis client
func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func snapshotKey(sessionID string) string {
	return snapshotKeyPrefix + sessionID
}

// SaveSnapshot overwrites the session's key
func (r *RedisRepository) SaveSnapshot(ctx context.Context, sessionID string, snap *models.PersistedTrustSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := r.client.Set(ctx, snapshotKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot reads and decodes the session's key
func (r *RedisRepository) GetSnapshot(ctx context.Context, sessionID string) (*models.PersistedTrustSnapshot, error) {
	data, err := r.client.Get(ctx, snapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	snap := &models.PersistedTrustSnapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// DeleteSnapshotsOlderThan scans snapshot keys and removes stale ones.
// Undecodable values are removed too. Each key is watched between the read
// and the delete, so a snapshot saved in between survives.
func (r *RedisRepository) DeleteSnapshotsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	iter := r.client.Scan(ctx, 0, snapshotKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		n, err := r.deleteIfStale(ctx, key, cutoff)
		if err != nil {
			return deleted, err
		}
		deleted += n
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan snapshots: %w", err)
	}
	return deleted, nil
}

func (r *RedisRepository) deleteIfStale(ctx context.Context, key string, cutoff time.Time) (int64, error) {
	var n int64
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}
		var snap models.PersistedTrustSnapshot
		if err := json.Unmarshal(data, &snap); err == nil && snap.Timestamp >= cutoff.UnixMilli() {
			return nil
		}
		var del *redis.IntCmd
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			del = pipe.Del(ctx, key)
			return nil
		}); err != nil {
			return err
		}
		n = del.Val()
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		// rewritten since the read
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return n, nil
}
