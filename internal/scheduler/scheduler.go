// Package scheduler wires up the cron job that periodically kicks off a
// weekly digest run.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"locum-match/internal/usecase"
)

// Scheduler wraps robfig/cron around the digest orchestrator.
type Scheduler struct {
	cron   *cron.Cron
	digest usecase.WeeklyDigestUsecase
	spec   string
	logger *log.Logger
}

func New(digest usecase.WeeklyDigestUsecase, spec string, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		digest: digest,
		spec:   spec,
		logger: logger,
	}
}

// Start registers the digest job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runDigest(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Printf("[scheduler] Cron started, spec: %s", s.spec)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) runDigest(ctx context.Context) {
	s.logger.Println("[scheduler] Weekly digest cycle started")

	m, err := s.digest.Run(ctx)
	if err != nil {
		if errors.Is(err, usecase.ErrRunLocked) {
			s.logger.Println("[scheduler] Digest already running elsewhere, skipping")
			return
		}
		s.logger.Printf("[scheduler] Digest run error: %v", err)
		return
	}

	s.logger.Printf("[scheduler] Weekly digest run %s finished with %d results", m.ID, m.ResultCount)
}
