// Package store keeps a session's current trust report in memory and its
// durable snapshot in a SnapshotRepository.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Dan9191/trust-score-service/internal/models"
	"github.com/Dan9191/trust-score-service/internal/repository"
)

// ReportStore is bound to a single session
type ReportStore struct {
	repo      repository.SnapshotRepository
	sessionID string
	now       func() time.Time

	mu      sync.RWMutex
	current *models.TrustScoreReport
}

// NewReportStore initializes a store for sessionID
func NewReportStore(repo repository.SnapshotRepository, sessionID string) *ReportStore {
	return &ReportStore{repo: repo, sessionID: sessionID, now: time.Now}
}

// Project reduces a report to its durable snapshot
func Project(report *models.TrustScoreReport, at time.Time) models.PersistedTrustSnapshot {
	snap := models.PersistedTrustSnapshot{
		CreditLimit:     report.EffectiveCreditLimit(),
		TrustScore:      report.ScoreOverview.TrustScore,
		TrustLevel:      report.ScoreOverview.TrustLevel,
		ScorePercentile: report.ScorePercentile,
		Timestamp:       at.UnixMilli(),
	}
	if capacity, ok := report.RepaymentCapacity(); ok {
		snap.RepaymentCapacity = &capacity
	}
	return snap
}

// Commit writes the snapshot and then replaces the in-memory report. When the
// write fails the previous report stays current.
func (s *ReportStore) Commit(ctx context.Context, report *models.TrustScoreReport) (*models.PersistedTrustSnapshot, error) {
	if report == nil {
		return nil, errors.New("commit: nil report")
	}
	snap := Project(report, s.now())
	if err := s.repo.SaveSnapshot(ctx, s.sessionID, &snap); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}

	s.mu.Lock()
	s.current = report
	s.mu.Unlock()
	return &snap, nil
}

// ReadSnapshot returns the latest snapshot; ok is false when no analysis has
// been committed yet.
func (s *ReportStore) ReadSnapshot(ctx context.Context) (*models.PersistedTrustSnapshot, bool, error) {
	snap, err := s.repo.GetSnapshot(ctx, s.sessionID)
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}
	return snap, true, nil
}

// Current returns the in-memory report, or nil
func (s *ReportStore) Current() *models.TrustScoreReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reset drops the in-memory report. The snapshot is kept.
func (s *ReportStore) Reset() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}
