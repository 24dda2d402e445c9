package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"locum-match/internal/domain/physician"
	"locum-match/internal/repository"
)

const poolCacheTTL = 5 * time.Minute

// loadPhysicianPool returns the matchable pool, served from cache when a
// fresh copy exists. The key carries the conflict-status set so a config
// change never reads a stale pool shape.
func loadPhysicianPool(ctx context.Context, c RunCache, physicians repository.PhysicianRepository, conflictStatuses []string, logger *log.Logger) ([]physician.Physician, error) {
	key := "physicians:pool:" + strings.Join(conflictStatuses, ",")

	var cached []physician.Physician
	if c != nil {
		hit, err := c.GetJSON(ctx, key, &cached)
		if err == nil && hit {
			return cached, nil
		}
	}

	pool, err := physicians.FindAll(ctx, conflictStatuses)
	if err != nil {
		return nil, err
	}

	if c != nil {
		if err := c.SetJSON(ctx, key, pool, poolCacheTTL); err != nil && logger != nil {
			logger.Printf("[Usecase] physician pool cache write failed: %v", err)
		}
	}
	return pool, nil
}
