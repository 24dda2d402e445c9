package matching

import (
	"sort"
	"strings"

	"locum-match/internal/domain/physician"
)

// Search is the end-to-end criteria → ranked-results function: filter the
// pool, score every survivor on each category, aggregate, threshold, sort,
// cap. Pure and CPU-bound; callers parallelize across criteria as they like.
//
// Ordering is deterministic: score descending, ties broken by physician id
// ascending, so identical inputs always produce identical output.
func Search(c Criteria, pool []physician.Physician, cfg Config) ([]Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(pool))
	for _, p := range pool {
		if !IsEligiblePhysician(p, c, cfg.Eligibility) {
			continue
		}

		breakdown := map[string]float64{
			CategoryLocation:   ScoreLocation(p, c.Location, cfg.Scoring),
			CategoryDuration:   ScoreDuration(p, c.DateRange, cfg.Scoring),
			CategoryEMR:        ScoreEMR(p.EMRSystems, c.EMR, cfg.Scoring),
			CategoryProvince:   ScoreProvince(p, c.Province, cfg.Scoring),
			CategorySpeciality: ScoreSpeciality(p, c.MedSpeciality, cfg.Scoring),
		}

		total := Aggregate(breakdown, cfg.Weights)
		if c.Threshold != nil && total < *c.Threshold {
			continue
		}

		results = append(results, Result{
			PhysicianID: p.ID,
			Score:       total,
			Breakdown:   breakdown,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return strings.Compare(results[i].PhysicianID.String(), results[j].PhysicianID.String()) < 0
	})

	if c.Limit != nil && len(results) > *c.Limit {
		results = results[:*c.Limit]
	}

	return results, nil
}
