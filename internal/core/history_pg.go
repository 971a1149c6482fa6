package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const createRunsTable = `
CREATE TABLE IF NOT EXISTS comparison_runs (
	id          TEXT PRIMARY KEY,
	file1       TEXT NOT NULL,
	file2       TEXT NOT NULL,
	sheet       TEXT NOT NULL,
	differences INTEGER NOT NULL,
	client_ip   TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertRun = `
INSERT INTO comparison_runs (id, file1, file2, sheet, differences, client_ip, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const selectRecentRuns = `
SELECT id, file1, file2, sheet, differences, client_ip, created_at
FROM comparison_runs
ORDER BY created_at DESC
LIMIT $1`

// PGHistory stores comparison runs in PostgreSQL.
type PGHistory struct {
	db DBTX
}

// NewPGHistory wraps a pool or transaction.
func NewPGHistory(db DBTX) *PGHistory {
	return &PGHistory{db: db}
}

// EnsureSchema creates the comparison_runs table if it does not exist.
func (h *PGHistory) EnsureSchema(ctx context.Context) error {
	if _, err := h.db.Exec(ctx, createRunsTable); err != nil {
		return fmt.Errorf("create comparison_runs: %w", err)
	}
	return nil
}

// Record inserts run.
func (h *PGHistory) Record(ctx context.Context, run RunRecord) error {
	_, err := h.db.Exec(ctx, insertRun,
		run.ID, run.File1, run.File2, run.Sheet,
		int32(run.Differences), run.ClientIP, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comparison run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (h *PGHistory) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryCapacity
	}

	rows, err := h.db.Query(ctx, selectRecentRuns, limit)
	if err != nil {
		return nil, fmt.Errorf("query comparison runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var (
			run   RunRecord
			count int32
		)
		if err := rows.Scan(&run.ID, &run.File1, &run.File2, &run.Sheet,
			&count, &run.ClientIP, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comparison run: %w", err)
		}
		run.Differences = int(count)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comparison runs: %w", err)
	}

	return runs, nil
}
