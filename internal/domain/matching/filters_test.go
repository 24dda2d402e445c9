package matching

import (
	"testing"
	"time"

	"locum-match/internal/domain/job"
	"locum-match/internal/domain/physician"
)

func eligibleCriteria() Criteria {
	return Criteria{
		MedProfession: "Physician",
		MedSpeciality: "Family Medicine",
		DateRange:     physician.DateRange{From: day(2025, 7, 15), To: day(2025, 7, 21)},
	}
}

func lookingPhysician() physician.Physician {
	return physician.Physician{
		MedProfession:      "Physician",
		MedSpeciality:      "Family Medicine",
		IsLookingForLocums: true,
	}
}

func TestIsEligiblePhysician_CaseInsensitiveMatches(t *testing.T) {
	cfg := EligibilityConfig{CheckLooking: true, CheckConflicts: true}
	p := lookingPhysician()
	p.MedProfession = "physician"
	p.MedSpeciality = "FAMILY MEDICINE "
	if !IsEligiblePhysician(p, eligibleCriteria(), cfg) {
		t.Fatal("profession/speciality matching must be case-insensitive")
	}
}

func TestIsEligiblePhysician_WrongProfessionOrSpeciality(t *testing.T) {
	cfg := EligibilityConfig{CheckLooking: true, CheckConflicts: true}

	p := lookingPhysician()
	p.MedProfession = "Recruiter"
	if IsEligiblePhysician(p, eligibleCriteria(), cfg) {
		t.Fatal("recruiter must not be eligible")
	}

	p = lookingPhysician()
	p.MedSpeciality = "Radiology"
	if IsEligiblePhysician(p, eligibleCriteria(), cfg) {
		t.Fatal("wrong speciality must not be eligible")
	}
}

func TestIsEligiblePhysician_LookingToggle(t *testing.T) {
	p := lookingPhysician()
	p.IsLookingForLocums = false

	if IsEligiblePhysician(p, eligibleCriteria(), EligibilityConfig{CheckLooking: true}) {
		t.Fatal("not-looking physician must fail when the check is on")
	}
	if !IsEligiblePhysician(p, eligibleCriteria(), EligibilityConfig{CheckLooking: false}) {
		t.Fatal("not-looking physician must pass when the check is off")
	}
}

func TestIsEligiblePhysician_ConflictToggle(t *testing.T) {
	p := lookingPhysician()
	p.BookedRanges = []physician.DateRange{
		{From: day(2025, 7, 18), To: day(2025, 7, 25)},
	}

	if IsEligiblePhysician(p, eligibleCriteria(), EligibilityConfig{CheckLooking: true, CheckConflicts: true}) {
		t.Fatal("overlapping reservation must fail when conflict check is on")
	}
	if !IsEligiblePhysician(p, eligibleCriteria(), EligibilityConfig{CheckLooking: true, CheckConflicts: false}) {
		t.Fatal("conflict check off must ignore reservations")
	}
}

func TestIsEligiblePhysician_TouchingIntervalsAreNoConflict(t *testing.T) {
	cfg := EligibilityConfig{CheckLooking: true, CheckConflicts: true}

	// Reservation ends exactly when the job starts: open intervals, no conflict.
	p := lookingPhysician()
	p.BookedRanges = []physician.DateRange{
		{From: day(2025, 7, 1), To: day(2025, 7, 15)},
	}
	if !IsEligiblePhysician(p, eligibleCriteria(), cfg) {
		t.Fatal("zero-length overlap must not count as a conflict")
	}
}

func shortTermJob(from, to time.Time, schedule string) job.LocumJob {
	return job.LocumJob{
		DateRange: physician.DateRange{From: from, To: to},
		Schedule:  schedule,
	}
}

func TestIsShortTermJob_DurationRule(t *testing.T) {
	cfg := ShortTermConfig{MaxDurationDays: 14}
	now := day(2025, 6, 1)

	// 10-day job under a 14-day threshold is short-term regardless of schedule text.
	j := shortTermJob(day(2025, 7, 1), day(2025, 7, 11), "")
	if !IsShortTermJob(j, cfg, now) {
		t.Fatal("10-day job with 14-day threshold must be short-term")
	}

	long := shortTermJob(day(2025, 7, 1), day(2025, 9, 1), "")
	if IsShortTermJob(long, cfg, now) {
		t.Fatal("two-month job must not be short-term on duration alone")
	}
}

func TestIsShortTermJob_KeywordRule(t *testing.T) {
	cfg := ShortTermConfig{ScheduleKeywords: []string{"on-call", "short notice"}}
	now := day(2025, 6, 1)

	j := shortTermJob(day(2025, 7, 1), day(2025, 9, 1), "Weekend ON-CALL coverage")
	if !IsShortTermJob(j, cfg, now) {
		t.Fatal("schedule keyword must mark the job short-term")
	}

	j = shortTermJob(day(2025, 7, 1), day(2025, 9, 1), "Regular weekday clinic")
	if IsShortTermJob(j, cfg, now) {
		t.Fatal("no keyword hit must not mark the job short-term")
	}
}

func TestIsShortTermJob_LeadTimeRule(t *testing.T) {
	cfg := ShortTermConfig{LeadTimeDays: 7}
	now := day(2025, 6, 1)

	soon := shortTermJob(day(2025, 6, 5), day(2025, 9, 1), "")
	if !IsShortTermJob(soon, cfg, now) {
		t.Fatal("job starting in 4 days with 7-day lead rule must be short-term")
	}

	far := shortTermJob(day(2025, 8, 1), day(2025, 9, 1), "")
	if IsShortTermJob(far, cfg, now) {
		t.Fatal("job starting in two months must not be short-term")
	}
}

func TestIsShortTermJob_AllRulesDisabled(t *testing.T) {
	j := shortTermJob(day(2025, 6, 2), day(2025, 6, 3), "on-call")
	if IsShortTermJob(j, ShortTermConfig{}, day(2025, 6, 1)) {
		t.Fatal("zeroed config must disable every rule")
	}
}
