package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Dan9191/trust-score-service/internal/models"
)

// PostgresRepository stores snapshots in trust.snapshots
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository initializes a repository over an open *sql.DB
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the snapshot table when it does not exist. Numeric
// columns are unbounded since out-of-range oracle figures are stored as claimed.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS trust`,
		`CREATE TABLE IF NOT EXISTS trust.snapshots (
			session_id         TEXT PRIMARY KEY,
			credit_limit       NUMERIC NOT NULL,
			trust_score        BIGINT NOT NULL,
			trust_level        TEXT NOT NULL,
			score_percentile   NUMERIC NOT NULL,
			repayment_capacity NUMERIC,
			taken_at_ms        BIGINT NOT NULL,
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`ALTER TABLE trust.snapshots
			ALTER COLUMN credit_limit TYPE NUMERIC,
			ALTER COLUMN trust_score TYPE BIGINT,
			ALTER COLUMN score_percentile TYPE NUMERIC,
			ALTER COLUMN repayment_capacity TYPE NUMERIC`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure snapshot schema: %w", err)
		}
	}
	return nil
}

// SaveSnapshot upserts the session's snapshot
func (r *PostgresRepository) SaveSnapshot(ctx context.Context, sessionID string, snap *models.PersistedTrustSnapshot) error {
	query := `
		INSERT INTO trust.snapshots (session_id, credit_limit, trust_score, trust_level, score_percentile, repayment_capacity, taken_at_ms, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		ON CONFLICT (session_id) DO UPDATE SET
			credit_limit = EXCLUDED.credit_limit,
			trust_score = EXCLUDED.trust_score,
			trust_level = EXCLUDED.trust_level,
			score_percentile = EXCLUDED.score_percentile,
			repayment_capacity = EXCLUDED.repayment_capacity,
			taken_at_ms = EXCLUDED.taken_at_ms,
			updated_at = CURRENT_TIMESTAMP`
	var capacity sql.NullFloat64
	if snap.RepaymentCapacity != nil {
		capacity = sql.NullFloat64{Float64: *snap.RepaymentCapacity, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, query,
		sessionID, snap.CreditLimit, snap.TrustScore, snap.TrustLevel, snap.ScorePercentile, capacity, snap.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot retrieves the session's snapshot
func (r *PostgresRepository) GetSnapshot(ctx context.Context, sessionID string) (*models.PersistedTrustSnapshot, error) {
	query := `
		SELECT credit_limit, trust_score, trust_level, score_percentile, repayment_capacity, taken_at_ms
		FROM trust.snapshots
		WHERE session_id = $1`
	snap := &models.PersistedTrustSnapshot{}
	var capacity sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query, sessionID).
		Scan(&snap.CreditLimit, &snap.TrustScore, &snap.TrustLevel, &snap.ScorePercentile, &capacity, &snap.Timestamp)
	if err == sql.ErrNoRows {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	if capacity.Valid {
		snap.RepaymentCapacity = &capacity.Float64
	}
	return snap, nil
}

// DeleteSnapshotsOlderThan removes snapshots taken before cutoff
func (r *PostgresRepository) DeleteSnapshotsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trust.snapshots WHERE taken_at_ms < $1`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted snapshots: %w", err)
	}
	return n, nil
}
