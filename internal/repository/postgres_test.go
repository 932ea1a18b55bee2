package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestPostgresRepository_SaveSnapshot(t *testing.T) {
	db, mock := setupMockDB(t)
	snap := testSnapshot(time.UnixMilli(1700000000000))

	mock.ExpectExec(`INSERT INTO trust.snapshots`).
		WithArgs("s1", 15000.0, 742, "HIGH TRUST", 78.0, 6000.0, int64(1700000000000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewPostgresRepository(db).SaveSnapshot(context.Background(), "s1", snap)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SaveSnapshotWithoutCapacity(t *testing.T) {
	db, mock := setupMockDB(t)
	snap := testSnapshot(time.UnixMilli(1700000000000))
	snap.RepaymentCapacity = nil

	mock.ExpectExec(`INSERT INTO trust.snapshots`).
		WithArgs("s1", 15000.0, 742, "HIGH TRUST", 78.0, nil, int64(1700000000000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewPostgresRepository(db).SaveSnapshot(context.Background(), "s1", snap)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SaveSnapshotError(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(`INSERT INTO trust.snapshots`).WillReturnError(errors.New("connection reset"))

	err := NewPostgresRepository(db).SaveSnapshot(context.Background(), "s1", testSnapshot(time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save snapshot")
}

func TestPostgresRepository_GetSnapshot(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"credit_limit", "trust_score", "trust_level", "score_percentile", "repayment_capacity", "taken_at_ms"}).
		AddRow(15000.0, 742, "HIGH TRUST", 78.0, 6000.0, int64(1700000000000))
	mock.ExpectQuery(`SELECT credit_limit, trust_score`).WithArgs("s1").WillReturnRows(rows)

	got, err := NewPostgresRepository(db).GetSnapshot(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, testSnapshot(time.UnixMilli(1700000000000)), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetSnapshotNullCapacity(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"credit_limit", "trust_score", "trust_level", "score_percentile", "repayment_capacity", "taken_at_ms"}).
		AddRow(15000.0, 742, "HIGH TRUST", 78.0, nil, int64(1700000000000))
	mock.ExpectQuery(`SELECT credit_limit, trust_score`).WithArgs("s1").WillReturnRows(rows)

	got, err := NewPostgresRepository(db).GetSnapshot(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, got.RepaymentCapacity)
}

func TestPostgresRepository_GetSnapshotNotFound(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT credit_limit, trust_score`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := NewPostgresRepository(db).GetSnapshot(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestPostgresRepository_DeleteSnapshotsOlderThan(t *testing.T) {
	db, mock := setupMockDB(t)
	cutoff := time.UnixMilli(1700000000000)

	mock.ExpectExec(`DELETE FROM trust.snapshots`).
		WithArgs(int64(1700000000000)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewPostgresRepository(db).DeleteSnapshotsOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_EnsureSchema(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS trust`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS trust.snapshots \(\s+session_id\s+TEXT PRIMARY KEY,\s+credit_limit\s+NUMERIC NOT NULL,\s+trust_score\s+BIGINT NOT NULL,\s+trust_level\s+TEXT NOT NULL,\s+score_percentile\s+NUMERIC NOT NULL,\s+repayment_capacity\s+NUMERIC,`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`ALTER TABLE trust.snapshots\s+ALTER COLUMN credit_limit TYPE NUMERIC,\s+ALTER COLUMN trust_score TYPE BIGINT,\s+ALTER COLUMN score_percentile TYPE NUMERIC,\s+ALTER COLUMN repayment_capacity TYPE NUMERIC`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewPostgresRepository(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
