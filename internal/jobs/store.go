package jobs

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"uniqvid/internal/profile"
)

//go:embed schema.sql
var schemaSQL string

const (
	sqliteBusyCode    = 5
	busyRetryAttempts = 5
	busyRetryBackoff  = 10 * time.Millisecond
)

// Store is the active-job ledger. Rows exist only while a job is live; the
// job's cleanup removes its row, and Open prunes anything a crashed run left
// behind.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to (or creates) the ledger database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ledger path not configured")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func (s *Store) execRetry(ctx context.Context, query string, args ...any) error {
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		_, lastErr = s.db.ExecContext(ctx, query, args...)
		if lastErr == nil || !isSQLiteBusy(lastErr) {
			return lastErr
		}
		select {
		case <-time.After(busyRetryBackoff << attempt):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// CreateJob inserts a new ledger row, stamping creation and update times.
func (s *Store) CreateJob(ctx context.Context, job *Job) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	return s.execRetry(ctx, `
		INSERT INTO jobs (id, source, original_name, copies, strength, status,
			error_message, produced, delivered, result_dir, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Source, job.OriginalName, job.Copies, string(job.Strength),
		string(job.Status), job.ErrorMessage, job.Produced, job.Delivered,
		job.ResultDir, formatTime(job.CreatedAt), formatTime(job.UpdatedAt))
}

// UpdateJob persists the job's mutable fields.
func (s *Store) UpdateJob(ctx context.Context, job *Job) error {
	job.UpdatedAt = time.Now().UTC()
	return s.execRetry(ctx, `
		UPDATE jobs SET status = ?, error_message = ?, produced = ?,
			delivered = ?, result_dir = ?, updated_at = ?
		WHERE id = ?`,
		string(job.Status), job.ErrorMessage, job.Produced, job.Delivered,
		job.ResultDir, formatTime(job.UpdatedAt), job.ID)
}

// GetJob fetches one job by ID. Returns (nil, nil) when no row exists.
func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" FROM jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return job, err
}

// ListJobs returns all ledger rows in creation order.
func (s *Store) ListJobs(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" FROM jobs ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// DeleteJob removes a job's row. Deleting an absent row is not an error, so
// repeated cleanup stays idempotent.
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	return s.execRetry(ctx, "DELETE FROM jobs WHERE id = ?", id)
}

// Prune drops every row. Called at startup: anything present belongs to a
// run that no longer exists.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM jobs")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const selectColumns = `SELECT id, source, original_name, copies, strength, status,
	error_message, produced, delivered, result_dir, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job                  Job
		strength             string
		status               string
		createdAt, updatedAt string
	)
	if err := row.Scan(&job.ID, &job.Source, &job.OriginalName, &job.Copies,
		&strength, &status, &job.ErrorMessage, &job.Produced, &job.Delivered,
		&job.ResultDir, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	job.Strength = profile.Strength(strength)
	job.Status = Status(status)
	job.CreatedAt = parseTime(createdAt)
	job.UpdatedAt = parseTime(updatedAt)
	return &job, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
