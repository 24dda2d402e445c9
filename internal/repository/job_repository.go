package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"locum-match/internal/database"
	"locum-match/internal/domain/job"

	"github.com/google/uuid"
)

var ErrJobNotFound = errors.New("locum job not found")

type JobRepository interface {
	FindByID(ctx context.Context, jobID uuid.UUID) (job.LocumJob, error)
	// ListActive returns jobs still worth matching: no reservation at all,
	// or a reservation whose status is in the configured active set.
	ListActive(ctx context.Context, activeReservationStatuses []string) ([]job.LocumJob, error)
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobColumns = `id, job_id, post_title, med_profession, med_speciality, lat, lng, full_address,
	date_from, date_to, job_type, emr, experience, locum_pay, schedule,
	locum_creator_id, reservation_id, facility_name`

func (r *PostgresJobRepository) FindByID(ctx context.Context, jobID uuid.UUID) (job.LocumJob, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM locum_jobs WHERE id = $1`, jobID)
	j, err := scanJob(row)
	if err != nil {
		if isNoRows(err) {
			return job.LocumJob{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}
		return job.LocumJob{}, err
	}
	return j, nil
}

func (r *PostgresJobRepository) ListActive(ctx context.Context, activeReservationStatuses []string) ([]job.LocumJob, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+jobColumns+`
		 FROM locum_jobs j
		 WHERE j.reservation_id IS NULL
		    OR EXISTS (
		         SELECT 1 FROM reservations res
		         WHERE res.id = j.reservation_id AND res.status = ANY($1)
		    )
		 ORDER BY j.date_from ASC`,
		activeReservationStatuses,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.LocumJob, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func scanJob(s scanner) (job.LocumJob, error) {
	var j job.LocumJob
	var fullAddress []byte
	err := s.Scan(
		&j.ID, &j.JobID, &j.PostTitle, &j.MedProfession, &j.MedSpeciality,
		&j.Location.Lat, &j.Location.Lng, &fullAddress,
		&j.DateRange.From, &j.DateRange.To, &j.JobType, &j.EMR, &j.Experience, &j.LocumPay, &j.Schedule,
		&j.LocumCreatorID, &j.ReservationID, &j.FacilityName,
	)
	if err != nil {
		return job.LocumJob{}, err
	}
	if len(fullAddress) > 0 {
		_ = json.Unmarshal(fullAddress, &j.FullAddress)
	}
	return j, nil
}
