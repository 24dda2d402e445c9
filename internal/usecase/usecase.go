// Package usecase holds the run orchestration: the short-term trigger, the
// weekly digest, and the read paths over runs, results and the outbox. The
// orchestrators own the run lifecycle end to end; scoring itself stays in
// domain/matching.
package usecase

import (
	"context"
	"errors"
	"time"

	"locum-match/internal/domain/job"
	"locum-match/internal/domain/matching"
	"locum-match/internal/domain/run"
	"locum-match/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInternal     = errors.New("internal error")
	ErrJobNotFound  = errors.New("Job not found")
	ErrRunNotFound  = errors.New("Match run not found")
	ErrNotShortTerm = errors.New("Job does not qualify as short-term")
	ErrRunLocked    = errors.New("Another run is already in progress")
)

// RunCache is the slice of the redis wrapper the orchestrators consume.
type RunCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string)
}

// RunNotifier receives run lifecycle events, typically a websocket hub.
type RunNotifier interface {
	RunStatusChanged(r run.MatchRun)
}

// searchCriteriaForJob maps a job posting onto engine criteria. A zero
// threshold means "keep everything", so it maps to no threshold at all.
func searchCriteriaForJob(j job.LocumJob, threshold float64, shortTerm bool) matching.Criteria {
	c := matching.Criteria{
		JobID:         &j.ID,
		MedProfession: j.MedProfession,
		MedSpeciality: j.MedSpeciality,
		Location:      j.Location,
		Province:      j.FullAddress.Province,
		DateRange:     j.DateRange,
		EMR:           j.EMR,
		IsShortTerm:   shortTerm,
	}
	if threshold > 0 {
		t := threshold
		c.Threshold = &t
	}
	return c
}

func runLockKey(runType run.Type) string {
	return "match:run:lock:" + string(runType)
}

// advanceRun moves a run to the next status in storage first, then mirrors
// the change on the in-memory copy and tells the notifier. Terminal statuses
// reached here are final; the repository enforces the transition table.
func advanceRun(ctx context.Context, runs repository.MatchRunRepository, m *run.MatchRun, status run.Status, errMsg string, notifier RunNotifier) error {
	if err := runs.UpdateRunStatus(ctx, m.ID, status, errMsg); err != nil {
		return err
	}
	m.Status = status
	m.Error = errMsg
	if notifier != nil {
		notifier.RunStatusChanged(*m)
	}
	return nil
}

func resultRows(runID uuid.UUID, jobID uuid.UUID, results []matching.Result, at time.Time) []run.MatchRunResult {
	rows := make([]run.MatchRunResult, 0, len(results))
	for _, res := range results {
		rows = append(rows, run.MatchRunResult{
			RunID:       runID,
			PhysicianID: res.PhysicianID,
			JobID:       jobID,
			Score:       res.Score,
			Breakdown:   res.Breakdown,
			ComputedAt:  at,
		})
	}
	return rows
}
