package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"locum-match/internal/domain/job"
	"locum-match/internal/domain/outbox"
	"locum-match/internal/domain/physician"
	"locum-match/internal/domain/run"

	"github.com/google/uuid"
)

func digestJob(title string) job.LocumJob {
	from := time.Now().UTC().AddDate(0, 1, 0)
	return job.LocumJob{
		ID:            uuid.New(),
		JobID:         "dg-" + title,
		PostTitle:     title,
		MedProfession: "Physician",
		MedSpeciality: "Family Medicine",
		Location:      physician.GeoCoordinates{Lat: 43.6532, Lng: -79.3832},
		FullAddress:   physician.Address{City: "Toronto", Province: "ON"},
		DateRange:     physician.DateRange{From: from, To: from.AddDate(0, 1, 0)},
	}
}

func TestWeeklyDigest_Run_OneDigestPerPhysician(t *testing.T) {
	j1 := digestJob("Clinic Coverage")
	j2 := digestJob("Hospitalist Week")

	p := matchablePhysician("Family Medicine")

	runs := newMemRunRepo()
	results := newMemResultRepo()
	ob := &memOutboxRepo{}

	uc := NewWeeklyDigestUsecase(
		&memJobRepo{active: []job.LocumJob{j1, j2}},
		&memPhysicianRepo{pool: []physician.Physician{p}},
		runs, results, ob,
		&memCache{}, nil, testConfig(), nil,
	)

	m, err := uc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if m.Status != run.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", m.Status)
	}
	if m.Type != run.TypeWeeklyDigest {
		t.Fatalf("wrong run type %s", m.Type)
	}
	if m.JobID != nil {
		t.Fatalf("digest runs are not tied to one job")
	}

	rows := results.saved[m.ID]
	if len(rows) != 2 {
		t.Fatalf("expected 2 result rows, got %d", len(rows))
	}
	seen := map[uuid.UUID]bool{}
	for _, row := range rows {
		if row.PhysicianID != p.ID {
			t.Fatalf("unexpected physician %s", row.PhysicianID)
		}
		if seen[row.JobID] {
			t.Fatalf("duplicate job %s for one physician", row.JobID)
		}
		seen[row.JobID] = true
	}

	if len(ob.items) != 1 {
		t.Fatalf("expected exactly one digest, got %d", len(ob.items))
	}
	item := ob.items[0]
	if item.Type != outbox.TypeWeeklyDigest {
		t.Fatalf("wrong type %s", item.Type)
	}
	if item.RecipientID != p.ID {
		t.Fatalf("digest for wrong physician")
	}
	var payload outbox.WeeklyDigestPayload
	if err := json.Unmarshal(item.Payload, &payload); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if len(payload.Matches) != 2 {
		t.Fatalf("expected 2 matches in digest, got %d", len(payload.Matches))
	}
}

func TestWeeklyDigest_Run_TopNCapsMatches(t *testing.T) {
	j1 := digestJob("A")
	j2 := digestJob("B")
	j3 := digestJob("C")
	p := matchablePhysician("Family Medicine")

	cfg := testConfig()
	cfg.Digest.TopNPerPhysician = 2

	results := newMemResultRepo()
	ob := &memOutboxRepo{}
	uc := NewWeeklyDigestUsecase(
		&memJobRepo{active: []job.LocumJob{j1, j2, j3}},
		&memPhysicianRepo{pool: []physician.Physician{p}},
		newMemRunRepo(), results, ob,
		nil, nil, cfg, nil,
	)

	m, err := uc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := len(results.saved[m.ID]); got != 2 {
		t.Fatalf("expected 2 persisted rows after capping, got %d", got)
	}
	var payload outbox.WeeklyDigestPayload
	if err := json.Unmarshal(ob.items[0].Payload, &payload); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if len(payload.Matches) != 2 {
		t.Fatalf("expected 2 matches after capping, got %d", len(payload.Matches))
	}
}

func TestWeeklyDigest_Run_UsesConflictStatusesForPool(t *testing.T) {
	j := digestJob("Clinic Coverage")
	phys := &memPhysicianRepo{pool: []physician.Physician{matchablePhysician("Family Medicine")}}
	cfg := testConfig()

	uc := NewWeeklyDigestUsecase(
		&memJobRepo{active: []job.LocumJob{j}},
		phys,
		newMemRunRepo(), newMemResultRepo(), &memOutboxRepo{},
		nil, nil, cfg, nil,
	)

	if _, err := uc.Run(context.Background()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	// Which jobs get digested is governed by the digest-active statuses; which
	// reservations block a physician is governed by the conflict statuses.
	want := cfg.Matching.ConflictReservationStatuses
	if len(phys.gotStatuses) != len(want) {
		t.Fatalf("expected conflict statuses %v, got %v", want, phys.gotStatuses)
	}
	for i, s := range want {
		if phys.gotStatuses[i] != s {
			t.Fatalf("expected conflict statuses %v, got %v", want, phys.gotStatuses)
		}
	}
}

func TestWeeklyDigest_Run_NoMatchesMeansNoDigests(t *testing.T) {
	j := digestJob("Surgery Week")
	p := matchablePhysician("Cardiology")

	ob := &memOutboxRepo{}
	uc := NewWeeklyDigestUsecase(
		&memJobRepo{active: []job.LocumJob{j}},
		&memPhysicianRepo{pool: []physician.Physician{p}},
		newMemRunRepo(), newMemResultRepo(), ob,
		nil, nil, testConfig(), nil,
	)

	m, err := uc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if m.Status != run.StatusCompleted {
		t.Fatalf("an empty pool still completes, got %s", m.Status)
	}
	if len(ob.items) != 0 {
		t.Fatalf("expected no digests, got %d", len(ob.items))
	}
}

func TestWeeklyDigest_Run_FailureEndsInFailed(t *testing.T) {
	runs := newMemRunRepo()
	uc := NewWeeklyDigestUsecase(
		&memJobRepo{err: errors.New("relation does not exist")},
		&memPhysicianRepo{},
		runs, newMemResultRepo(), &memOutboxRepo{},
		nil, nil, testConfig(), nil,
	)

	m, err := uc.Run(context.Background())
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	stored, getErr := runs.GetRun(context.Background(), m.ID)
	if getErr != nil {
		t.Fatalf("run not stored: %v", getErr)
	}
	if stored.Status != run.StatusFailed {
		t.Fatalf("expected FAILED, got %s", stored.Status)
	}
	if stored.Error == "" {
		t.Fatalf("failed run must carry an error message")
	}
}

func TestWeeklyDigest_Run_SecondConcurrentRunRejected(t *testing.T) {
	uc := NewWeeklyDigestUsecase(
		&memJobRepo{},
		&memPhysicianRepo{},
		newMemRunRepo(), newMemResultRepo(), &memOutboxRepo{},
		&memCache{locked: true}, nil, testConfig(), nil,
	)
	_, err := uc.Run(context.Background())
	if !errors.Is(err, ErrRunLocked) {
		t.Fatalf("expected ErrRunLocked, got %v", err)
	}
}
