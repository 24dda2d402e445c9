package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"locum-match/internal/config"
	"locum-match/internal/domain/matching"
	"locum-match/internal/reporting"
	"locum-match/internal/repository"

	"github.com/google/uuid"
)

type ReportUsecase interface {
	// BuildForRun renders a report over a finished run's persisted results.
	BuildForRun(ctx context.Context, runID uuid.UUID, format string) (reporting.Report, error)
}

type Report struct {
	runs    repository.MatchRunRepository
	results repository.MatchRunResultRepository
	jobs    repository.JobRepository
	cfg     config.ReportConfig
}

func NewReportUsecase(runs repository.MatchRunRepository, results repository.MatchRunResultRepository, jobs repository.JobRepository, cfg config.ReportConfig) *Report {
	return &Report{runs: runs, results: results, jobs: jobs, cfg: cfg}
}

func (u *Report) BuildForRun(ctx context.Context, runID uuid.UUID, format string) (reporting.Report, error) {
	if runID == uuid.Nil {
		return reporting.Report{}, ErrRunNotFound
	}
	if _, err := u.runs.GetRun(ctx, runID); err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			return reporting.Report{}, ErrRunNotFound
		}
		return reporting.Report{}, ErrInternal
	}

	rows, err := u.results.GetResults(ctx, runID)
	if err != nil {
		return reporting.Report{}, ErrInternal
	}

	// A digest run spans many jobs, a short-term run exactly one. Either
	// way the report gets one section per job.
	byJob := make(map[uuid.UUID][]matching.Result)
	for _, row := range rows {
		byJob[row.JobID] = append(byJob[row.JobID], matching.Result{
			PhysicianID: row.PhysicianID,
			Score:       row.Score,
			Breakdown:   row.Breakdown,
		})
	}

	jobIDs := make([]uuid.UUID, 0, len(byJob))
	for id := range byJob {
		jobIDs = append(jobIDs, id)
	}
	sort.Slice(jobIDs, func(a, b int) bool {
		return jobIDs[a].String() < jobIDs[b].String()
	})

	sections := make([]reporting.Section, 0, len(jobIDs))
	for _, jobID := range jobIDs {
		j, err := u.jobs.FindByID(ctx, jobID)
		if err != nil {
			return reporting.Report{}, ErrInternal
		}
		sections = append(sections, reporting.Section{Job: j, Results: byJob[jobID]})
	}

	if format == "" {
		format = u.cfg.Format
	}
	return reporting.Generate(sections, reporting.Options{TopK: u.cfg.TopK, Format: format}, time.Now().UTC())
}
