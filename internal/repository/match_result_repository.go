package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"locum-match/internal/database"
	"locum-match/internal/domain/run"

	"github.com/google/uuid"
)

type MatchRunResultRepository interface {
	// SaveResults writes all rows for a run in one transaction and bumps the
	// parent run's result count.
	SaveResults(ctx context.Context, runID uuid.UUID, results []run.MatchRunResult) error
	// GetResults returns a run's rows sorted by score descending.
	GetResults(ctx context.Context, runID uuid.UUID) ([]run.MatchRunResult, error)
}

type PostgresMatchRunResultRepository struct {
	db database.DB
}

func NewPostgresMatchRunResultRepository(db database.DB) *PostgresMatchRunResultRepository {
	return &PostgresMatchRunResultRepository{db: db}
}

func (r *PostgresMatchRunResultRepository) SaveResults(ctx context.Context, runID uuid.UUID, results []run.MatchRunResult) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM match_runs WHERE id = $1)`, runID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	for _, res := range results {
		breakdown, err := json.Marshal(res.Breakdown)
		if err != nil {
			return err
		}
		computedAt := res.ComputedAt
		if computedAt.IsZero() {
			computedAt = time.Now().UTC()
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO match_run_results (run_id, physician_id, job_id, score, breakdown, computed_at)
			 VALUES ($1,$2,$3,$4,$5,$6)
			 ON CONFLICT (run_id, physician_id, job_id) DO UPDATE SET
				score = EXCLUDED.score,
				breakdown = EXCLUDED.breakdown,
				computed_at = EXCLUDED.computed_at`,
			runID, res.PhysicianID, res.JobID, res.Score, breakdown, computedAt,
		)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE match_runs
		 SET result_count = (SELECT COUNT(*) FROM match_run_results WHERE run_id = $1)
		 WHERE id = $1`,
		runID,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostgresMatchRunResultRepository) GetResults(ctx context.Context, runID uuid.UUID) ([]run.MatchRunResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT run_id, physician_id, job_id, score, breakdown, computed_at
		 FROM match_run_results
		 WHERE run_id = $1
		 ORDER BY score DESC, physician_id ASC`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]run.MatchRunResult, 0)
	for rows.Next() {
		var res run.MatchRunResult
		var breakdown []byte
		if err := rows.Scan(&res.RunID, &res.PhysicianID, &res.JobID, &res.Score, &breakdown, &res.ComputedAt); err != nil {
			return nil, err
		}
		if len(breakdown) > 0 {
			if err := json.Unmarshal(breakdown, &res.Breakdown); err != nil {
				return nil, err
			}
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
