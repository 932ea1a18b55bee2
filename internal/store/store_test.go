package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dan9191/trust-score-service/internal/models"
	"github.com/Dan9191/trust-score-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *models.TrustScoreReport {
	return &models.TrustScoreReport{
		ScoreOverview: models.ScoreOverview{
			TrustScore: 742,
			TrustLevel: models.TrustLevelHigh,
		},
		CreditLimitBreakdown: &models.CreditLimitBreakdown{
			ApprovedLimit:     12000,
			MaxEligibleLimit:  20000,
			RepaymentCapacity: 6000,
		},
		RecommendedCreditLimit: 15000,
		ScorePercentile:        78,
	}
}

type failingRepo struct {
	repository.SnapshotRepository
}

func (failingRepo) SaveSnapshot(context.Context, string, *models.PersistedTrustSnapshot) error {
	return errors.New("disk full")
}

func TestCommit_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewReportStore(repository.NewMemoryRepository(), "s1")
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }

	report := testReport()
	_, err := s.Commit(ctx, report)
	require.NoError(t, err)

	snap, ok, err := s.ReadSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 12000.0, snap.CreditLimit)
	assert.Equal(t, report.ScoreOverview.TrustScore, snap.TrustScore)
	assert.Equal(t, report.ScoreOverview.TrustLevel, snap.TrustLevel)
	assert.Equal(t, report.ScorePercentile, snap.ScorePercentile)
	require.NotNil(t, snap.RepaymentCapacity)
	assert.Equal(t, 6000.0, *snap.RepaymentCapacity)
	assert.Equal(t, int64(1700000000000), snap.Timestamp)
	assert.Same(t, report, s.Current())
}

func TestProject_FallsBackToRecommendedLimit(t *testing.T) {
	report := testReport()
	report.CreditLimitBreakdown = nil

	snap := Project(report, time.Now())
	assert.Equal(t, 15000.0, snap.CreditLimit)
	assert.Nil(t, snap.RepaymentCapacity)

	report = testReport()
	report.CreditLimitBreakdown.ApprovedLimit = 0
	report.CreditLimitBreakdown.RepaymentCapacity = 0
	snap = Project(report, time.Now())
	assert.Equal(t, 15000.0, snap.CreditLimit)
	assert.Nil(t, snap.RepaymentCapacity)
}

func TestReadSnapshot_NoAnalysisYet(t *testing.T) {
	s := NewReportStore(repository.NewMemoryRepository(), "s1")

	snap, ok, err := s.ReadSnapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, snap)
}

func TestCommit_OverwritesWholesale(t *testing.T) {
	ctx := context.Background()
	s := NewReportStore(repository.NewMemoryRepository(), "s1")

	_, err := s.Commit(ctx, testReport())
	require.NoError(t, err)

	second := testReport()
	second.ScoreOverview.TrustScore = 610
	second.CreditLimitBreakdown = nil
	_, err = s.Commit(ctx, second)
	require.NoError(t, err)

	snap, _, err := s.ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 610, snap.TrustScore)
	assert.Equal(t, 15000.0, snap.CreditLimit)
	assert.Nil(t, snap.RepaymentCapacity)
}

func TestCommit_FailureKeepsPreviousReport(t *testing.T) {
	s := NewReportStore(failingRepo{}, "s1")

	_, err := s.Commit(context.Background(), testReport())
	require.Error(t, err)
	assert.Nil(t, s.Current())
}

func TestReset_KeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewReportStore(repository.NewMemoryRepository(), "s1")

	_, err := s.Commit(ctx, testReport())
	require.NoError(t, err)

	s.Reset()
	assert.Nil(t, s.Current())

	_, ok, err := s.ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStores_AreSessionScoped(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository()

	_, err := NewReportStore(repo, "a").Commit(ctx, testReport())
	require.NoError(t, err)

	_, ok, err := NewReportStore(repo, "b").ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
