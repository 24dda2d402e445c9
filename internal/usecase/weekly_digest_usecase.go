package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"locum-match/internal/config"
	"locum-match/internal/domain/job"
	"locum-match/internal/domain/matching"
	"locum-match/internal/domain/outbox"
	"locum-match/internal/domain/physician"
	"locum-match/internal/domain/run"
	"locum-match/internal/repository"

	"github.com/google/uuid"
)

type WeeklyDigestUsecase interface {
	// Run executes one WEEKLY_DIGEST run over every active job and returns
	// the run in its final state.
	Run(ctx context.Context) (run.MatchRun, error)
}

type WeeklyDigest struct {
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

func NewWeeklyDigestUsecase(
	jobs repository.JobRepository,
	physicians repository.PhysicianRepository,
	runs repository.MatchRunRepository,
	results repository.MatchRunResultRepository,
	outboxRepo repository.NotificationOutboxRepository,
	cache RunCache,
	notifier RunNotifier,
	cfg config.Config,
	logger *log.Logger,
) *WeeklyDigest {
	return &WeeklyDigest{
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

func (u *WeeklyDigest) Run(ctx context.Context) (run.MatchRun, error) {
	// Only one digest run at a time across the deployment.
	lockKey := runLockKey(run.TypeWeeklyDigest)
	if u.cache != nil {
		ok, lockErr := u.cache.AcquireLock(ctx, lockKey, 30*time.Minute)
		if lockErr == nil && !ok {
			return run.MatchRun{}, ErrRunLocked
		}
		defer u.cache.ReleaseLock(ctx, lockKey)
	}

	m := run.MatchRun{
		ID:     uuid.New(),
		Type:   run.TypeWeeklyDigest,
		Status: run.StatusPending,
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

	activeJobs, err := u.jobs.ListActive(ctx, u.cfg.Digest.ActiveReservationStatuses)
	if err != nil {
		return u.fail(ctx, m, fmt.Errorf("list active jobs: %w", err))
	}

	pool, err := loadPhysicianPool(ctx, u.cache, u.physicians, u.cfg.Matching.ConflictReservationStatuses, u.logger)
	if err != nil {
		return u.fail(ctx, m, fmt.Errorf("load physician pool: %w", err))
	}

	perJob, err := u.searchAll(ctx, activeJobs, pool)
	if err != nil {
		return u.fail(ctx, m, fmt.Errorf("search jobs: %w", err))
	}

	merged := mergeTopMatches(activeJobs, perJob, u.cfg.Digest.TopNPerPhysician)

	computedAt := time.Now().UTC()
	rows := make([]run.MatchRunResult, 0)
	for _, matches := range merged {
		for _, mm := range matches {
			rows = append(rows, run.MatchRunResult{
				RunID:       m.ID,
				PhysicianID: mm.physicianID,
				JobID:       mm.jobID,
				Score:       mm.score,
				Breakdown:   mm.breakdown,
				ComputedAt:  computedAt,
			})
		}
	}
	if err := u.results.SaveResults(ctx, m.ID, rows); err != nil {
		return u.fail(ctx, m, fmt.Errorf("save results: %w", err))
	}

	items, err := digestNotifications(merged)
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
		u.logger.Printf("[Digest] run %s completed: %d jobs, %d result rows, %d digests", m.ID, len(activeJobs), len(rows), len(items))
	}
	return m, nil
}

// searchAll runs the engine once per job with a bounded number of workers.
// Each job writes into its own slot so the outcome is independent of worker
// scheduling.
func (u *WeeklyDigest) searchAll(ctx context.Context, activeJobs []job.LocumJob, pool []physician.Physician) ([][]matching.Result, error) {
	workers := u.cfg.Digest.SearchWorkers
	if workers <= 0 {
		workers = 1
	}

	perJob := make([][]matching.Result, len(activeJobs))
	errs := make([]error, len(activeJobs))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, j := range activeJobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, j job.LocumJob) {
			defer wg.Done()
			defer func() { <-sem }()
			criteria := searchCriteriaForJob(j, u.cfg.Matching.ScoreThreshold, false)
			perJob[i], errs[i] = matching.Search(criteria, pool, u.cfg.MatchingEngine())
		}(i, j)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", activeJobs[i].ID, err)
		}
	}
	return perJob, nil
}

type digestMatch struct {
	physicianID uuid.UUID
	jobID       uuid.UUID
	jobTitle    string
	score       float64
	breakdown   map[string]float64
}

// mergeTopMatches flattens per-job results into each physician's best topN
// matches across all jobs. A job appears at most once per physician.
func mergeTopMatches(activeJobs []job.LocumJob, perJob [][]matching.Result, topN int) map[uuid.UUID][]digestMatch {
	if topN <= 0 {
		topN = 5
	}

	byPhysician := make(map[uuid.UUID][]digestMatch)
	for i, results := range perJob {
		j := activeJobs[i]
		for _, res := range results {
			byPhysician[res.PhysicianID] = append(byPhysician[res.PhysicianID], digestMatch{
				physicianID: res.PhysicianID,
				jobID:       j.ID,
				jobTitle:    j.PostTitle,
				score:       res.Score,
				breakdown:   res.Breakdown,
			})
		}
	}

	for id, matches := range byPhysician {
		sort.Slice(matches, func(a, b int) bool {
			if matches[a].score != matches[b].score {
				return matches[a].score > matches[b].score
			}
			return matches[a].jobID.String() < matches[b].jobID.String()
		})

		seen := make(map[uuid.UUID]bool, len(matches))
		kept := matches[:0]
		for _, mm := range matches {
			if seen[mm.jobID] {
				continue
			}
			seen[mm.jobID] = true
			kept = append(kept, mm)
			if len(kept) == topN {
				break
			}
		}
		byPhysician[id] = kept
	}
	return byPhysician
}

// digestNotifications builds exactly one WEEKLY_DIGEST item per physician
// with at least one match.
func digestNotifications(merged map[uuid.UUID][]digestMatch) ([]outbox.Item, error) {
	physicianIDs := make([]uuid.UUID, 0, len(merged))
	for id := range merged {
		physicianIDs = append(physicianIDs, id)
	}
	sort.Slice(physicianIDs, func(a, b int) bool {
		return physicianIDs[a].String() < physicianIDs[b].String()
	})

	items := make([]outbox.Item, 0, len(physicianIDs))
	for _, id := range physicianIDs {
		matches := merged[id]
		if len(matches) == 0 {
			continue
		}
		p := outbox.WeeklyDigestPayload{Matches: make([]outbox.JobMatch, 0, len(matches))}
		for _, mm := range matches {
			p.Matches = append(p.Matches, outbox.JobMatch{
				JobID:    mm.jobID,
				Score:    mm.score,
				JobTitle: mm.jobTitle,
			})
		}
		payload, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		items = append(items, outbox.Item{
			Type:        outbox.TypeWeeklyDigest,
			RecipientID: id,
			Payload:     payload,
		})
	}
	return items, nil
}

func (u *WeeklyDigest) fail(ctx context.Context, m run.MatchRun, cause error) (run.MatchRun, error) {
	if err := advanceRun(ctx, u.runs, &m, run.StatusFailed, cause.Error(), u.notifier); err != nil && u.logger != nil {
		u.logger.Printf("[Digest] run %s could not be marked failed: %v (cause: %v)", m.ID, err, cause)
	}
	if u.logger != nil {
		u.logger.Printf("[Digest] run %s failed: %v", m.ID, cause)
	}
	return m, fmt.Errorf("%w: %v", ErrInternal, cause)
}
