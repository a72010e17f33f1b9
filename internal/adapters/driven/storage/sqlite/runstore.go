package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Save stores or replaces a sync report.
func (s *runStore) Save(ctx context.Context, report domain.SyncReport) error {
	if report.RunID == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}

	failures := report.Failed
	if failures == nil {
		failures = []domain.DocumentFailure{}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("marshalling failures: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, store_type, container, index_name, started_at, finished_at,
			listed, eligible, indexed, index_total, failures, fatal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			finished_at = excluded.finished_at,
			listed = excluded.listed,
			eligible = excluded.eligible,
			indexed = excluded.indexed,
			index_total = excluded.index_total,
			failures = excluded.failures,
			fatal = excluded.fatal
	`, report.RunID, report.StoreType, report.Container, report.Index,
		formatTime(report.StartedAt), formatNullableTime(report.FinishedAt),
		report.Listed, report.Eligible, report.Indexed, report.IndexTotal,
		string(failuresJSON), nullString(report.Fatal))

	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// Get retrieves a report by run ID.
func (s *runStore) Get(ctx context.Context, runID string) (*domain.SyncReport, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT run_id, store_type, container, index_name, started_at, finished_at,
			listed, eligible, indexed, index_total, failures, fatal
		FROM runs WHERE run_id = ?
	`, runID)

	report, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return report, nil
}

// List returns up to limit reports, newest first.
// A non-positive limit returns every report.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.SyncReport, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, store_type, container, index_name, started_at, finished_at,
			listed, eligible, indexed, index_total, failures, fatal
		FROM runs
		ORDER BY started_at DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	reports := []domain.SyncReport{}
	for rows.Next() {
		report, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return reports, nil
}

// Close closes the underlying database.
func (s *runStore) Close() error {
	return s.store.Close()
}

// ==================== Helper Functions ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.SyncReport, error) {
	var report domain.SyncReport
	var startedAt, failuresJSON string
	var finishedAt, fatal sql.NullString

	if err := row.Scan(&report.RunID, &report.StoreType, &report.Container, &report.Index,
		&startedAt, &finishedAt, &report.Listed, &report.Eligible, &report.Indexed,
		&report.IndexTotal, &failuresJSON, &fatal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	if t, err := time.Parse(timeLayout, startedAt); err == nil {
		report.StartedAt = t
	}
	if finishedAt.Valid {
		if t, err := time.Parse(timeLayout, finishedAt.String); err == nil {
			report.FinishedAt = t
		}
	}
	if fatal.Valid {
		report.Fatal = fatal.String
	}
	if err := json.Unmarshal([]byte(failuresJSON), &report.Failed); err != nil {
		return nil, fmt.Errorf("unmarshalling failures: %w", err)
	}

	return &report, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// formatNullableTime returns nil for the zero time.
func formatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
