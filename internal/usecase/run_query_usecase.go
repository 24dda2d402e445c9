package usecase

import (
	"context"
	"errors"

	"locum-match/internal/domain/outbox"
	"locum-match/internal/domain/run"
	"locum-match/internal/repository"

	"github.com/google/uuid"
)

var ErrOutboxItemNotFound = errors.New("Outbox item not found")

type RunQueryUsecase interface {
	GetRun(ctx context.Context, runID uuid.UUID) (run.MatchRun, error)
	GetResults(ctx context.Context, runID uuid.UUID) ([]run.MatchRunResult, error)
	GetPendingRuns(ctx context.Context, runType run.Type) ([]run.MatchRun, error)
	GetPendingOutbox(ctx context.Context, itemType outbox.Type) ([]outbox.Item, error)
	// MarkOutboxSent acknowledges delivery of one item on behalf of the
	// external sender.
	MarkOutboxSent(ctx context.Context, itemID uuid.UUID) error
}

type RunQuery struct {
	runs    repository.MatchRunRepository
	results repository.MatchRunResultRepository
	outbox  repository.NotificationOutboxRepository
}

func NewRunQueryUsecase(runs repository.MatchRunRepository, results repository.MatchRunResultRepository, outboxRepo repository.NotificationOutboxRepository) *RunQuery {
	return &RunQuery{runs: runs, results: results, outbox: outboxRepo}
}

func (u *RunQuery) GetRun(ctx context.Context, runID uuid.UUID) (run.MatchRun, error) {
	if runID == uuid.Nil {
		return run.MatchRun{}, ErrRunNotFound
	}
	m, err := u.runs.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			return run.MatchRun{}, ErrRunNotFound
		}
		return run.MatchRun{}, ErrInternal
	}
	return m, nil
}

func (u *RunQuery) GetResults(ctx context.Context, runID uuid.UUID) ([]run.MatchRunResult, error) {
	if _, err := u.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := u.results.GetResults(ctx, runID)
	if err != nil {
		return nil, ErrInternal
	}
	return rows, nil
}

func (u *RunQuery) GetPendingRuns(ctx context.Context, runType run.Type) ([]run.MatchRun, error) {
	runs, err := u.runs.GetPendingRuns(ctx, runType)
	if err != nil {
		return nil, ErrInternal
	}
	return runs, nil
}

func (u *RunQuery) GetPendingOutbox(ctx context.Context, itemType outbox.Type) ([]outbox.Item, error) {
	items, err := u.outbox.GetPending(ctx, itemType)
	if err != nil {
		return nil, ErrInternal
	}
	return items, nil
}

func (u *RunQuery) MarkOutboxSent(ctx context.Context, itemID uuid.UUID) error {
	if itemID == uuid.Nil {
		return ErrOutboxItemNotFound
	}
	if err := u.outbox.MarkSent(ctx, itemID); err != nil {
		if errors.Is(err, repository.ErrOutboxItemNotFound) {
			return ErrOutboxItemNotFound
		}
		return ErrInternal
	}
	return nil
}
