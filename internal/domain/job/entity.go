// Package job holds the clean locum job posting and reservation records.
package job

import (
	"time"

	"locum-match/internal/domain/physician"

	"github.com/google/uuid"
)

type LocumJob struct {
	ID uuid.UUID

	// Human-readable short id like "EuXagtm".
	JobID string

	PostTitle string

	MedProfession string
	MedSpeciality string

	// All current jobs carry coordinates.
	Location    physician.GeoCoordinates
	FullAddress physician.Address

	// When the locum needs to be filled.
	DateRange physician.DateRange

	// "FTE" or "PT".
	JobType string

	// EMR system at the facility, "" when the posting has none (most don't yet).
	EMR string

	Experience string
	LocumPay   string
	Schedule   string

	LocumCreatorID uuid.UUID
	ReservationID  *uuid.UUID
	FacilityName   string
}

type ReservationStatus string

const (
	ReservationPending    ReservationStatus = "Pending"
	ReservationInProgress ReservationStatus = "In Progress"
	ReservationOngoing    ReservationStatus = "Ongoing"
	ReservationCompleted  ReservationStatus = "Completed"
	ReservationCancelled  ReservationStatus = "Cancelled"
	ReservationExpired    ReservationStatus = "Expired"
)

// Reservation is a doctor booked for a locum job. Needed for the
// scheduling-conflict check: don't match someone already booked for
// overlapping dates.
type Reservation struct {
	ID              uuid.UUID
	LocumJobID      uuid.UUID
	CreatedBy       uuid.UUID
	ReservedBy      *uuid.UUID
	Status          ReservationStatus
	ReservationDate physician.DateRange
	CreatedAt       time.Time
	DateModified    time.Time
}
