package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"locum-match/internal/config"
	"locum-match/internal/domain/matching"
	"locum-match/internal/domain/outbox"
	"locum-match/internal/domain/run"
	"locum-match/internal/repository"

	"github.com/google/uuid"
)

type ShortTermMatchUsecase interface {
	// RunForJob executes a full SHORT_TERM match run for one job and
	// returns the run in its final state.
	RunForJob(ctx context.Context, jobID uuid.UUID) (run.MatchRun, error)
}

type ShortTermMatch struct {
	jobs       repository.JobRepository
	physicians repository.PhysicianRepository
	runs       repository.MatchRunRepository
	results    repository.MatchRunResultRepository
	outbox     repository.NotificationOutboxRepository

	cache    RunCache
	notifier RunNotifier
	cfg      config.Config
	logger   *log.Logger
}

func NewShortTermMatchUsecase(
	jobs repository.JobRepository,
	physicians repository.PhysicianRepository,
	runs repository.MatchRunRepository,
	results repository.MatchRunResultRepository,
	outboxRepo repository.NotificationOutboxRepository,
	cache RunCache,
	notifier RunNotifier,
	cfg config.Config,
	logger *log.Logger,
) *ShortTermMatch {
	return &ShortTermMatch{
		jobs:       jobs,
		physicians: physicians,
		runs:       runs,
		results:    results,
		outbox:     outboxRepo,
		cache:      cache,
		notifier:   notifier,
		cfg:        cfg,
		logger:     logger,
	}
}

func (u *ShortTermMatch) RunForJob(ctx context.Context, jobID uuid.UUID) (run.MatchRun, error) {
	if jobID == uuid.Nil {
		return run.MatchRun{}, ErrJobNotFound
	}

	j, err := u.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return run.MatchRun{}, ErrJobNotFound
		}
		return run.MatchRun{}, ErrInternal
	}

	if !matching.IsShortTermJob(j, u.cfg.ShortTerm(), time.Now().UTC()) {
		return run.MatchRun{}, ErrNotShortTerm
	}

	// One run per job at a time. A second trigger while a run is live is a
	// caller mistake, not a reason to double-notify physicians.
	lockKey := runLockKey(run.TypeShortTerm) + ":" + jobID.String()
	if u.cache != nil {
		ok, lockErr := u.cache.AcquireLock(ctx, lockKey, 5*time.Minute)
		if lockErr == nil && !ok {
			return run.MatchRun{}, ErrRunLocked
		}
		defer u.cache.ReleaseLock(ctx, lockKey)
	}

	m := run.MatchRun{
		ID:     uuid.New(),
		Type:   run.TypeShortTerm,
		Status: run.StatusPending,
		JobID:  &j.ID,
	}
	if err := u.runs.CreateRun(ctx, m); err != nil {
		return run.MatchRun{}, ErrInternal
	}
	if u.notifier != nil {
		u.notifier.RunStatusChanged(m)
	}

	if err := advanceRun(ctx, u.runs, &m, run.StatusRunning, "", u.notifier); err != nil {
		return m, ErrInternal
	}

	pool, err := loadPhysicianPool(ctx, u.cache, u.physicians, u.cfg.Matching.ConflictReservationStatuses, u.logger)
	if err != nil {
		return u.fail(ctx, m, fmt.Errorf("load physician pool: %w", err))
	}

	criteria := searchCriteriaForJob(j, u.cfg.Matching.ScoreThreshold, true)
	found, err := matching.Search(criteria, pool, u.cfg.MatchingEngine())
	if err != nil {
		return u.fail(ctx, m, fmt.Errorf("search: %w", err))
	}

	computedAt := time.Now().UTC()
	rows := resultRows(m.ID, j.ID, found, computedAt)
	if err := u.results.SaveResults(ctx, m.ID, rows); err != nil {
		return u.fail(ctx, m, fmt.Errorf("save results: %w", err))
	}

	items, err := u.notifications(j.ID, j.PostTitle, found)
	if err != nil {
		return u.fail(ctx, m, fmt.Errorf("build notifications: %w", err))
	}
	if len(items) > 0 {
		if err := u.outbox.Enqueue(ctx, items); err != nil {
			return u.fail(ctx, m, fmt.Errorf("enqueue notifications: %w", err))
		}
	}

	if err := advanceRun(ctx, u.runs, &m, run.StatusCompleted, "", u.notifier); err != nil {
		return m, ErrInternal
	}
	m.ResultCount = len(rows)

	if u.logger != nil {
		u.logger.Printf("[ShortTerm] run %s for job %s completed: %d results, %d notifications", m.ID, j.JobID, len(rows), len(items))
	}
	return m, nil
}

// notifications builds one SHORT_TERM_MATCH outbox item per physician whose
// score clears the notify threshold, which is independent of the score
// threshold applied inside the search.
func (u *ShortTermMatch) notifications(jobID uuid.UUID, jobTitle string, found []matching.Result) ([]outbox.Item, error) {
	items := make([]outbox.Item, 0, len(found))
	for _, res := range found {
		if res.Score < u.cfg.Matching.NotifyThreshold {
			continue
		}
		payload, err := json.Marshal(outbox.ShortTermPayload{
			JobID:    jobID,
			Score:    res.Score,
			JobTitle: jobTitle,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, outbox.Item{
			Type:        outbox.TypeShortTermMatch,
			RecipientID: res.PhysicianID,
			Payload:     payload,
		})
	}
	return items, nil
}

// fail marks the run FAILED with the cause. The run must never be left in
// RUNNING, so a failed transition here is logged loudly.
func (u *ShortTermMatch) fail(ctx context.Context, m run.MatchRun, cause error) (run.MatchRun, error) {
	if err := advanceRun(ctx, u.runs, &m, run.StatusFailed, cause.Error(), u.notifier); err != nil && u.logger != nil {
		u.logger.Printf("[ShortTerm] run %s could not be marked failed: %v (cause: %v)", m.ID, err, cause)
	}
	if u.logger != nil {
		u.logger.Printf("[ShortTerm] run %s failed: %v", m.ID, cause)
	}
	return m, fmt.Errorf("%w: %v", ErrInternal, cause)
}
