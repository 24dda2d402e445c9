// Package physician holds the clean physician profile used by the matching
// engine. Raw records are messy (province variants, month/year availability
// strings, half-missing optional fields); everything is normalized before it
// reaches these types. Optional collections are always empty slices, never
// nil-means-error.
package physician

import (
	"time"

	"github.com/google/uuid"
)

type GeoCoordinates struct {
	Lat float64
	Lng float64
}

// Address with province already cleaned to a 2-letter code ("ON", "QC").
type Address struct {
	StreetNumber string
	StreetName   string
	City         string
	Province     string
	PostalCode   string
	Country      string
}

// AvailabilityWindow is one declared availability interval. Location is an
// optional per-window override for physicians who relocate for a stretch.
type AvailabilityWindow struct {
	From     time.Time
	To       time.Time
	Location *GeoCoordinates
}

// DateRange is a closed interval with From <= To.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Days returns the interval length in whole days, never negative.
func (r DateRange) Days() float64 {
	d := r.To.Sub(r.From).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}

// OverlapDays returns the overlap between two ranges in days, 0 when disjoint.
func (r DateRange) OverlapDays(other DateRange) float64 {
	from := r.From
	if other.From.After(from) {
		from = other.From
	}
	to := r.To
	if other.To.Before(to) {
		to = other.To
	}
	d := to.Sub(from).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}

// Overlaps reports open-interval overlap: zero-length touching is no overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.From.Before(other.To) && other.From.Before(r.To)
}

type Physician struct {
	ID        uuid.UUID
	FirstName string
	LastName  string

	// "Physician", "Recruiter" - only physicians get matched.
	MedProfession string
	// "Family Medicine", "Emergency Medicine", ...
	MedSpeciality string

	// Missing values are normalized to true upstream, so always a boolean here.
	IsLookingForLocums bool

	// Anchor location; nil for physicians with no location data at all.
	Location    *GeoCoordinates
	WorkAddress *Address

	// Province of medical licensure, "" when unknown.
	MedicalProvince string

	PreferredProvinces []string
	EMRSystems         []string
	Languages          []string

	Availability []AvailabilityWindow

	// Preferred duration buckets like "1 day to 2 weeks", "1-3 months".
	LocumDurations []string
	// "Weekdays", "Weekends", "Evenings".
	AvailabilityTypes []string

	IsProfileComplete     bool
	IsOnboardingCompleted bool

	// Date ranges of the physician's active reservations, attached by the
	// pool loader so the scheduling-conflict check stays a pure predicate.
	BookedRanges []DateRange
}
