package matching

import (
	"strings"
	"time"

	"locum-match/internal/domain/job"
	"locum-match/internal/domain/physician"
)

// IsEligiblePhysician is the hard gate in front of scoring. Only physicians
// passing it get scored at all. Pure predicate, no side effects.
func IsEligiblePhysician(p physician.Physician, c Criteria, cfg EligibilityConfig) bool {
	if !strings.EqualFold(strings.TrimSpace(p.MedProfession), strings.TrimSpace(c.MedProfession)) {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(p.MedSpeciality), strings.TrimSpace(c.MedSpeciality)) {
		return false
	}
	if cfg.CheckLooking && !p.IsLookingForLocums {
		return false
	}
	if cfg.CheckConflicts {
		for _, booked := range p.BookedRanges {
			if booked.Overlaps(c.DateRange) {
				return false
			}
		}
	}
	return true
}

// IsShortTermJob decides whether a job triggers an immediate matching run.
// The definition of "short-term" is owned by product and changes, so every
// rule reads its threshold from cfg. Rules are OR'd.
func IsShortTermJob(j job.LocumJob, cfg ShortTermConfig, now time.Time) bool {
	if cfg.MaxDurationDays > 0 && j.DateRange.Days() < cfg.MaxDurationDays {
		return true
	}
	if len(cfg.ScheduleKeywords) > 0 && j.Schedule != "" {
		schedule := strings.ToLower(j.Schedule)
		for _, kw := range cfg.ScheduleKeywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(schedule, kw) {
				return true
			}
		}
	}
	if cfg.LeadTimeDays > 0 {
		lead := j.DateRange.From.Sub(now).Hours() / 24
		if lead >= 0 && lead <= cfg.LeadTimeDays {
			return true
		}
	}
	return false
}
