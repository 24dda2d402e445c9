package matching

import (
	"math"
	"strings"

	"locum-match/internal/domain/physician"
)

// Each scorer judges one dimension of fit and returns a value in [0,1].
// Scorers are pure, deterministic and independent of each other. When the
// platform never collected the data a scorer needs, it returns NeutralScore
// instead of erroring: 43% of physicians have no location, only ~10% have
// EMR data, and none of that is the physician's fault.

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(a, b physician.GeoCoordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// ScoreLocation scores proximity with a smooth inverse-quadratic drop-off:
// 1.0 at 0 km, 0.5 at the configured midpoint, asymptotically 0 beyond.
// There is deliberately no hard travel radius.
func ScoreLocation(p physician.Physician, jobLocation physician.GeoCoordinates, cfg ScoringConfig) float64 {
	if p.Location == nil {
		return NeutralScore
	}
	mid := cfg.LocationMidpointKm
	if mid <= 0 {
		mid = 100
	}
	d := HaversineKm(*p.Location, jobLocation)
	return clamp01(1 / (1 + (d/mid)*(d/mid)))
}

// durationBucketDays maps the duration buckets physicians pick in their
// profile to day spans, for the bucket-alignment bonus.
var durationBucketDays = map[string][2]float64{
	"1 day to 2 weeks":   {1, 14},
	"2 weeks to 1 month": {14, 30},
	"1-3 months":         {30, 90},
	"3-6 months":         {90, 180},
	"6+ months":          {180, math.MaxFloat64},
}

// ScoreDuration scores availability coverage of the job's date range: the
// best overlap across all declared windows divided by the job duration,
// plus a small bonus when a preferred duration bucket fits the job length.
// No declared availability at all scores NeutralScore; declared availability
// that misses the job entirely scores 0.
func ScoreDuration(p physician.Physician, jobRange physician.DateRange, cfg ScoringConfig) float64 {
	if len(p.Availability) == 0 {
		return NeutralScore
	}

	jobDays := jobRange.Days()
	var coverage float64
	if jobDays <= 0 {
		// Zero-length range (From == To). Overlap arithmetic would report 0
		// even for a window spanning the date, so fall back to containment.
		jobDays = 1
		for _, w := range p.Availability {
			if !jobRange.From.Before(w.From) && !jobRange.From.After(w.To) {
				coverage = 1.0
				break
			}
		}
	} else {
		maxOverlap := 0.0
		for _, w := range p.Availability {
			overlap := jobRange.OverlapDays(physician.DateRange{From: w.From, To: w.To})
			if overlap > maxOverlap {
				maxOverlap = overlap
			}
		}
		coverage = maxOverlap / jobDays
	}

	score := coverage
	if cfg.DurationBucketBonus > 0 && bucketMatches(p.LocumDurations, jobDays) {
		score += cfg.DurationBucketBonus
	}
	return clamp01(score)
}

func bucketMatches(buckets []string, jobDays float64) bool {
	for _, b := range buckets {
		span, ok := durationBucketDays[strings.ToLower(strings.TrimSpace(b))]
		if !ok {
			continue
		}
		if jobDays >= span[0] && jobDays <= span[1] {
			return true
		}
	}
	return false
}

// ScoreEMR scores EMR familiarity. The EMR field doesn't exist on most job
// postings yet and only a fraction of physicians filled theirs in, so either
// side missing means NeutralScore. Substring matches ("OSCAR" vs "OSCAR
// Pro") earn the configured partial score.
func ScoreEMR(physicianEMRs []string, jobEMR string, cfg ScoringConfig) float64 {
	jobEMR = normalize(jobEMR)
	if jobEMR == "" || len(physicianEMRs) == 0 {
		return NeutralScore
	}

	best := 0.0
	for _, e := range physicianEMRs {
		e = normalize(e)
		if e == "" {
			continue
		}
		if e == jobEMR {
			return 1.0
		}
		if cfg.EMRPartialScore > best && (strings.Contains(e, jobEMR) || strings.Contains(jobEMR, e)) {
			best = cfg.EMRPartialScore
		}
	}
	return clamp01(best)
}

// ScoreProvince scores province alignment: preferred province 1.0, licensing
// province the configured partial score, otherwise 0. Unknown job province
// or no declared preferences score NeutralScore.
func ScoreProvince(p physician.Physician, jobProvince string, cfg ScoringConfig) float64 {
	jobProvince = normalize(jobProvince)
	if jobProvince == "" {
		return NeutralScore
	}
	if len(p.PreferredProvinces) == 0 {
		return NeutralScore
	}
	for _, pref := range p.PreferredProvinces {
		if normalize(pref) == jobProvince {
			return 1.0
		}
	}
	if normalize(p.MedicalProvince) == jobProvince {
		return clamp01(cfg.ProvinceLicenseScore)
	}
	return 0.0
}

// ScoreSpeciality scores speciality match. The eligibility filter already
// kicks out non-matching specialities, so in practice this is near-always
// 1.0; it exists to populate the breakdown and to support related-speciality
// partial credit from the configured table.
func ScoreSpeciality(p physician.Physician, jobSpeciality string, cfg ScoringConfig) float64 {
	ps := normalize(p.MedSpeciality)
	js := normalize(jobSpeciality)
	if ps != "" && ps == js {
		return 1.0
	}
	if related, ok := cfg.RelatedSpecialities[ps]; ok {
		if s, ok := related[js]; ok {
			return clamp01(s)
		}
	}
	if related, ok := cfg.RelatedSpecialities[js]; ok {
		if s, ok := related[ps]; ok {
			return clamp01(s)
		}
	}
	return 0.0
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
