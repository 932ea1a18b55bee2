package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/trust-score-service/internal/repository"
)

// Sweeper periodically evicts idle sessions and, when a retention is set,
// deletes old snapshots
type Sweeper struct {
	registry  *SessionRegistry
	repo      repository.SnapshotRepository
	idleTTL   time.Duration
	retention time.Duration
	log       *logrus.Logger
	now       func() time.Time
	cron      *cron.Cron
}

// NewSweeper initializes a sweeper; retention <= 0 keeps snapshots forever
func NewSweeper(registry *SessionRegistry, repo repository.SnapshotRepository, idleTTL, retention time.Duration, log *logrus.Logger) *Sweeper {
	cronLog := cron.PrintfLogger(log)
	return &Sweeper{
		registry:  registry,
		repo:      repo,
		idleTTL:   idleTTL,
		retention: retention,
		log:       log,
		now:       time.Now,
		cron:      cron.New(cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog))),
	}
}

// Start schedules the sweep, e.g. "@every 10m"
func (s *Sweeper) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.log.Errorf("Sweep failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	return nil
}

// Stop halts scheduling; the returned context is done once a running sweep ends
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce performs a single sweep
func (s *Sweeper) RunOnce(ctx context.Context) error {
	evicted := s.registry.Evict(s.idleTTL)

	var deleted int64
	if s.retention > 0 {
		n, err := s.repo.DeleteSnapshotsOlderThan(ctx, s.now().Add(-s.retention))
		if err != nil {
			return fmt.Errorf("delete stale snapshots: %w", err)
		}
		deleted = n
	}

	if evicted > 0 || deleted > 0 {
		s.log.WithFields(logrus.Fields{
			"sessions_evicted":  evicted,
			"snapshots_deleted": deleted,
		}).Info("Sweep completed")
	}
	return nil
}
