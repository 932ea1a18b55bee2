package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Dan9191/trust-score-service/internal/models"
)

// ErrSnapshotNotFound means no analysis has been committed for the session
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository persists one trust snapshot per session. Saves overwrite.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, sessionID string, snap *models.PersistedTrustSnapshot) error
	GetSnapshot(ctx context.Context, sessionID string) (*models.PersistedTrustSnapshot, error)
	DeleteSnapshotsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// MemoryRepository keeps snapshots in process memory
type MemoryRepository struct {
	mu        sync.RWMutex
	snapshots map[string]models.PersistedTrustSnapshot
}

// NewMemoryRepository initializes an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{snapshots: make(map[string]models.PersistedTrustSnapshot)}
}

func (r *MemoryRepository) SaveSnapshot(_ context.Context, sessionID string, snap *models.PersistedTrustSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[sessionID] = cloneSnapshot(*snap)
	return nil
}

func (r *MemoryRepository) GetSnapshot(_ context.Context, sessionID string) (*models.PersistedTrustSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.snapshots[sessionID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	out := cloneSnapshot(snap)
	return &out, nil
}

func (r *MemoryRepository) DeleteSnapshotsOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, snap := range r.snapshots {
		if snap.Timestamp < cutoff.UnixMilli() {
			delete(r.snapshots, id)
			n++
		}
	}
	return n, nil
}

func cloneSnapshot(s models.PersistedTrustSnapshot) models.PersistedTrustSnapshot {
	if s.RepaymentCapacity != nil {
		v := *s.RepaymentCapacity
		s.RepaymentCapacity = &v
	}
	return s
}
