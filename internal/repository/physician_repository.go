package repository

import (
	"context"
	"encoding/json"
	"time"

	"locum-match/internal/database"
	"locum-match/internal/domain/physician"

	"github.com/google/uuid"
)

type PhysicianRepository interface {
	// FindAll returns the clean physician pool with booked ranges attached
	// for reservations in any of the given conflict statuses, so eligibility
	// stays a pure predicate.
	FindAll(ctx context.Context, conflictReservationStatuses []string) ([]physician.Physician, error)
}

type PostgresPhysicianRepository struct {
	db database.DB
}

func NewPostgresPhysicianRepository(db database.DB) *PostgresPhysicianRepository {
	return &PostgresPhysicianRepository{db: db}
}

func (r *PostgresPhysicianRepository) FindAll(ctx context.Context, conflictReservationStatuses []string) ([]physician.Physician, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, first_name, last_name, med_profession, med_speciality, is_looking_for_locums,
		        lat, lng, work_address, medical_province, preferred_provinces, emr_systems, languages,
		        availability, locum_durations, availability_types, is_profile_complete, is_onboarding_completed
		 FROM physicians`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]physician.Physician, 0)
	for rows.Next() {
		var p physician.Physician
		var lat, lng *float64
		var workAddress, availability []byte
		if err := rows.Scan(
			&p.ID, &p.FirstName, &p.LastName, &p.MedProfession, &p.MedSpeciality, &p.IsLookingForLocums,
			&lat, &lng, &workAddress, &p.MedicalProvince, &p.PreferredProvinces, &p.EMRSystems, &p.Languages,
			&availability, &p.LocumDurations, &p.AvailabilityTypes, &p.IsProfileComplete, &p.IsOnboardingCompleted,
		); err != nil {
			return nil, err
		}
		if lat != nil && lng != nil {
			p.Location = &physician.GeoCoordinates{Lat: *lat, Lng: *lng}
		}
		if len(workAddress) > 0 {
			var addr physician.Address
			if err := json.Unmarshal(workAddress, &addr); err == nil {
				p.WorkAddress = &addr
			}
		}
		if p.Availability, err = parseAvailability(availability); err != nil {
			return nil, err
		}
		ensureEmptySlices(&p)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachBookedRanges(ctx, out, conflictReservationStatuses); err != nil {
		return nil, err
	}

	return out, nil
}

func parseAvailability(raw []byte) ([]physician.AvailabilityWindow, error) {
	windows := make([]physician.AvailabilityWindow, 0)
	if len(raw) == 0 {
		return windows, nil
	}
	var decoded []struct {
		From     time.Time                 `json:"from"`
		To       time.Time                 `json:"to"`
		Location *physician.GeoCoordinates `json:"location"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	for _, w := range decoded {
		windows = append(windows, physician.AvailabilityWindow{
			From:     w.From,
			To:       w.To,
			Location: w.Location,
		})
	}
	return windows, nil
}

// No-data is always an empty collection, never nil-means-missing.
func ensureEmptySlices(p *physician.Physician) {
	if p.PreferredProvinces == nil {
		p.PreferredProvinces = []string{}
	}
	if p.EMRSystems == nil {
		p.EMRSystems = []string{}
	}
	if p.Languages == nil {
		p.Languages = []string{}
	}
	if p.LocumDurations == nil {
		p.LocumDurations = []string{}
	}
	if p.AvailabilityTypes == nil {
		p.AvailabilityTypes = []string{}
	}
	if p.BookedRanges == nil {
		p.BookedRanges = []physician.DateRange{}
	}
}

func (r *PostgresPhysicianRepository) attachBookedRanges(ctx context.Context, pool []physician.Physician, conflictStatuses []string) error {
	if len(pool) == 0 || len(conflictStatuses) == 0 {
		return nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT reserved_by, date_from, date_to
		 FROM reservations
		 WHERE reserved_by IS NOT NULL AND status = ANY($1)`,
		conflictStatuses,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	byPhysician := make(map[uuid.UUID][]physician.DateRange)
	for rows.Next() {
		var reservedBy uuid.UUID
		var dr physician.DateRange
		if err := rows.Scan(&reservedBy, &dr.From, &dr.To); err != nil {
			return err
		}
		byPhysician[reservedBy] = append(byPhysician[reservedBy], dr)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range pool {
		if booked, ok := byPhysician[pool[i].ID]; ok {
			pool[i].BookedRanges = booked
		}
	}
	return nil
}
