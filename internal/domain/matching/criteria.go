package matching

import (
	"errors"
	"fmt"
	"strings"

	"locum-match/internal/domain/physician"

	"github.com/google/uuid"
)

var ErrInvalidCriteria = errors.New("invalid search criteria")

// Criteria is the input to a matching search: "what are we looking for".
// Usually built from a job posting, but the weekly digest builds one per
// active job and one-off queries need no job at all.
type Criteria struct {
	// The job this search is for. Nil for searches not tied to one job.
	JobID *uuid.UUID

	MedProfession string
	MedSpeciality string

	// Job location, used for distance scoring.
	Location physician.GeoCoordinates

	// 2-letter code, "" when unknown.
	Province string

	DateRange physician.DateRange

	// EMR at the facility, "" when the posting has none.
	EMR string

	IsShortTerm bool

	// Minimum total score to be included. Nil = no threshold.
	Threshold *float64

	// Max results, sorted by score descending then capped. Nil = no cap.
	Limit *int
}

// Validate rejects malformed criteria before any scoring happens.
func (c Criteria) Validate() error {
	if strings.TrimSpace(c.MedProfession) == "" {
		return fmt.Errorf("%w: medProfession is required", ErrInvalidCriteria)
	}
	if strings.TrimSpace(c.MedSpeciality) == "" {
		return fmt.Errorf("%w: medSpeciality is required", ErrInvalidCriteria)
	}
	if c.DateRange.From.After(c.DateRange.To) {
		return fmt.Errorf("%w: dateRange.from is after dateRange.to", ErrInvalidCriteria)
	}
	if c.Threshold != nil && (*c.Threshold < 0 || *c.Threshold > 1) {
		return fmt.Errorf("%w: threshold must be within [0,1]", ErrInvalidCriteria)
	}
	if c.Limit != nil && *c.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidCriteria)
	}
	return nil
}

// Result is a single physician match: the total score plus a per-category
// breakdown so the platform can show WHY someone matched. A missing
// breakdown key means the category was not evaluated, which is different
// from a 0 score.
type Result struct {
	PhysicianID uuid.UUID
	Score       float64
	Breakdown   map[string]float64
}
