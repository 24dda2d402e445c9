package matching

// Category names used as breakdown keys. The breakdown map is open: future
// scorers can add keys without touching existing ones.
const (
	CategoryLocation   = "location"
	CategoryDuration   = "duration"
	CategoryEMR        = "emr"
	CategoryProvince   = "province"
	CategorySpeciality = "speciality"
)

// NeutralScore is returned by every scorer when the platform has no data to
// judge on. Missing data never penalizes and never rewards.
const NeutralScore = 0.5

// EligibilityConfig toggles the individual hard filters. Product rules here
// are expected to change, so nothing is hardwired into the predicate.
type EligibilityConfig struct {
	// Require IsLookingForLocums to be true.
	CheckLooking bool
	// Exclude physicians with an active reservation overlapping the job dates.
	CheckConflicts bool
}

// ScoringConfig carries every scorer knob. Values come from external
// configuration, never from literals inside the scorers.
type ScoringConfig struct {
	// Distance at which the location score reaches 0.5. Kilometres.
	LocationMidpointKm float64

	// Bonus added to the duration score when a declared duration bucket
	// matches the job's length.
	DurationBucketBonus float64

	// Score for a fuzzy (substring) EMR match, e.g. "OSCAR" vs "OSCAR Pro".
	EMRPartialScore float64

	// Score when the job province is not preferred but matches the
	// physician's licensing province.
	ProvinceLicenseScore float64

	// Related-speciality partial credit, keyed by normalized speciality on
	// both levels. Lookup is symmetric. Empty means exact-match only.
	RelatedSpecialities map[string]map[string]float64
}

// ShortTermConfig defines what counts as a "short-term" job. The rules are
// OR'd together; zeroing a field disables that rule.
type ShortTermConfig struct {
	// Jobs shorter than this many days are short-term. 0 disables.
	MaxDurationDays float64
	// Schedule keywords such as "on-call", "short notice". Empty disables.
	ScheduleKeywords []string
	// Jobs starting within this many days from now are short-term. 0 disables.
	LeadTimeDays float64
}

// Config is everything the search engine needs beyond the criteria itself.
type Config struct {
	Eligibility EligibilityConfig
	// Per-category weights. They need not sum to 1; the aggregator
	// normalizes by the weights of the categories actually scored.
	Weights map[string]float64
	Scoring ScoringConfig
}

// DefaultConfig mirrors the current business priority order:
// speciality/location > duration/province > EMR.
func DefaultConfig() Config {
	return Config{
		Eligibility: EligibilityConfig{
			CheckLooking:   true,
			CheckConflicts: true,
		},
		Weights: map[string]float64{
			CategorySpeciality: 0.25,
			CategoryLocation:   0.25,
			CategoryDuration:   0.20,
			CategoryProvince:   0.20,
			CategoryEMR:        0.10,
		},
		Scoring: ScoringConfig{
			LocationMidpointKm:   100,
			DurationBucketBonus:  0.1,
			EMRPartialScore:      0.8,
			ProvinceLicenseScore: 0.8,
		},
	}
}
