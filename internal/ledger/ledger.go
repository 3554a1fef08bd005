// Package ledger persists executed runs and their per-entry outcomes to
// postgres so operators can reconstruct what a failover actually did.
package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wqeqwqeq/drctl/internal/domain"
	"github.com/wqeqwqeq/drctl/internal/execute"
)

const (
	createRunsTableQuery = `CREATE TABLE IF NOT EXISTS runs (
		run_id        TEXT PRIMARY KEY,
		mode          TEXT NOT NULL,
		scope         TEXT NOT NULL,
		environment   TEXT NOT NULL,
		dry_run       BOOLEAN NOT NULL,
		started_at    TIMESTAMPTZ NOT NULL,
		finished_at   TIMESTAMPTZ NOT NULL,
		failed        BOOLEAN NOT NULL
	)`

	createOutcomesTableQuery = `CREATE TABLE IF NOT EXISTS run_outcomes (
		run_id        TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
		seq           INT NOT NULL,
		category      TEXT NOT NULL,
		domain        TEXT NOT NULL,
		target        TEXT NOT NULL,
		status        TEXT NOT NULL,
		changed       BOOLEAN NOT NULL,
		detail        TEXT,
		error_message TEXT,
		PRIMARY KEY (run_id, seq)
	)`

	insertRunQuery = `INSERT INTO runs (
		run_id, mode, scope, environment, dry_run, started_at, finished_at, failed
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	insertOutcomeQuery = `INSERT INTO run_outcomes (
		run_id, seq, category, domain, target, status, changed, detail, error_message
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("ledger store not initialized")
	}
	if _, err := s.db.ExecContext(ctx, createRunsTableQuery); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, createOutcomesTableQuery); err != nil {
		return fmt.Errorf("create run_outcomes table: %w", err)
	}
	return nil
}

// RecordRun writes the run row and all outcome rows in one transaction so a
// run never appears without its outcomes.
func (s *Store) RecordRun(ctx context.Context, sel domain.Selection, report execute.Report, dryRun bool) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("ledger store not initialized")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, insertRunQuery,
		report.RunID,
		string(sel.Mode),
		sel.Scope,
		string(sel.Environment),
		dryRun,
		report.StartedAt,
		report.FinishedAt,
		report.Failed(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", report.RunID, err)
	}

	for i, o := range report.Outcomes {
		_, err = tx.ExecContext(ctx, insertOutcomeQuery,
			report.RunID,
			i,
			string(o.Category),
			o.Domain,
			o.Target,
			string(o.Status),
			o.Changed,
			nullIfEmpty(o.Detail),
			nullIfEmpty(o.Err),
		)
		if err != nil {
			return fmt.Errorf("insert outcome %d for run %s: %w", i, report.RunID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
