package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"locum-match/internal/database"
	"locum-match/internal/domain/run"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrRunNotFound       = errors.New("match run not found")
	ErrDuplicateRun      = errors.New("match run id already exists")
	ErrInvalidTransition = errors.New("invalid match run status transition")
)

type MatchRunRepository interface {
	// CreateRun persists a new run. Duplicate ids are rejected with
	// ErrDuplicateRun so a retried trigger can never double-book a run.
	CreateRun(ctx context.Context, r run.MatchRun) error
	// UpdateRunStatus moves a run through the state machine. Transitions
	// the table disallows fail with ErrInvalidTransition; unknown run ids
	// fail with ErrRunNotFound, never a silent no-op.
	UpdateRunStatus(ctx context.Context, runID uuid.UUID, status run.Status, errMsg string) error
	GetRun(ctx context.Context, runID uuid.UUID) (run.MatchRun, error)
	// GetPendingRuns returns PENDING runs oldest-first, optionally filtered
	// by type ("" = all). This is the retry-driving query.
	GetPendingRuns(ctx context.Context, runType run.Type) ([]run.MatchRun, error)
}

type PostgresMatchRunRepository struct {
	db database.DB
}

func NewPostgresMatchRunRepository(db database.DB) *PostgresMatchRunRepository {
	return &PostgresMatchRunRepository{db: db}
}

func (r *PostgresMatchRunRepository) CreateRun(ctx context.Context, m run.MatchRun) error {
	if m.ID == uuid.Nil {
		return fmt.Errorf("match run id is required")
	}
	if m.Status == "" {
		m.Status = run.StatusPending
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO match_runs (id, run_type, status, job_id, created_at, started_at, completed_at, error, result_count)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		m.ID, string(m.Type), string(m.Status), m.JobID, m.CreatedAt, m.StartedAt, m.CompletedAt, m.Error, m.ResultCount,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateRun, m.ID)
	}
	return err
}

func (r *PostgresMatchRunRepository) UpdateRunStatus(ctx context.Context, runID uuid.UUID, status run.Status, errMsg string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var current string
	err = tx.QueryRow(ctx, `SELECT status FROM match_runs WHERE id = $1 FOR UPDATE`, runID).Scan(&current)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return err
	}

	from, err := run.ParseStatus(current)
	if err != nil {
		return err
	}
	if !run.IsTransitionAllowed(from, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, status)
	}

	now := time.Now().UTC()
	var startedAt, completedAt *time.Time
	if status == run.StatusRunning {
		startedAt = &now
	}
	if run.IsTerminal(status) {
		completedAt = &now
	}

	_, err = tx.Exec(ctx,
		`UPDATE match_runs
		 SET status = $2,
		     started_at = COALESCE($3, started_at),
		     completed_at = COALESCE($4, completed_at),
		     error = CASE WHEN $2 = 'FAILED' THEN $5 ELSE error END
		 WHERE id = $1`,
		runID, string(status), startedAt, completedAt, errMsg,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostgresMatchRunRepository) GetRun(ctx context.Context, runID uuid.UUID) (run.MatchRun, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, run_type, status, job_id, created_at, started_at, completed_at, error, result_count
		 FROM match_runs WHERE id = $1`,
		runID,
	)
	m, err := scanRun(row)
	if err != nil {
		if isNoRows(err) {
			return run.MatchRun{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return run.MatchRun{}, err
	}
	return m, nil
}

func (r *PostgresMatchRunRepository) GetPendingRuns(ctx context.Context, runType run.Type) ([]run.MatchRun, error) {
	query := `SELECT id, run_type, status, job_id, created_at, started_at, completed_at, error, result_count
	          FROM match_runs WHERE status = 'PENDING'`
	args := []any{}
	if runType != "" {
		query += ` AND run_type = $1`
		args = append(args, string(runType))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]run.MatchRun, 0)
	for rows.Next() {
		m, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (run.MatchRun, error) {
	var m run.MatchRun
	var runType, status string
	if err := s.Scan(&m.ID, &runType, &status, &m.JobID, &m.CreatedAt, &m.StartedAt, &m.CompletedAt, &m.Error, &m.ResultCount); err != nil {
		return run.MatchRun{}, err
	}
	m.Type = run.Type(runType)
	m.Status = run.Status(status)
	return m, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
