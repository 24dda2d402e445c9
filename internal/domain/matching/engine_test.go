package matching

import (
	"errors"
	"reflect"
	"testing"

	"locum-match/internal/domain/physician"

	"github.com/google/uuid"
)

func poolOf(n int) []physician.Physician {
	pool := make([]physician.Physician, 0, n)
	for i := 0; i < n; i++ {
		p := lookingPhysician()
		p.ID = uuid.New()
		loc := physician.GeoCoordinates{Lat: 43.0 + float64(i)*0.5, Lng: -79.0}
		p.Location = &loc
		pool = append(pool, p)
	}
	return pool
}

func TestSearch_RejectsInvalidCriteria(t *testing.T) {
	c := eligibleCriteria()
	c.MedSpeciality = ""
	if _, err := Search(c, poolOf(3), DefaultConfig()); !errors.Is(err, ErrInvalidCriteria) {
		t.Fatalf("expected ErrInvalidCriteria, got %v", err)
	}

	c = eligibleCriteria()
	c.DateRange.From, c.DateRange.To = c.DateRange.To.AddDate(0, 1, 0), c.DateRange.From
	if _, err := Search(c, poolOf(3), DefaultConfig()); !errors.Is(err, ErrInvalidCriteria) {
		t.Fatalf("expected ErrInvalidCriteria for inverted range, got %v", err)
	}
}

func TestSearch_EmptyPoolIsEmptyNotError(t *testing.T) {
	got, err := Search(eligibleCriteria(), nil, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty results, got %d", len(got))
	}
}

func TestSearch_ScoresWithinBoundsAndSorted(t *testing.T) {
	results, err := Search(eligibleCriteria(), poolOf(8), DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(results) != 8 {
		t.Fatalf("expected 8 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Score < 0 || r.Score > 1 {
			t.Fatalf("score out of range: %v", r.Score)
		}
		for cat, v := range r.Breakdown {
			if v < 0 || v > 1 {
				t.Fatalf("breakdown %s out of range: %v", cat, v)
			}
		}
		if i > 0 && results[i-1].Score < r.Score {
			t.Fatalf("results not sorted descending at index %d", i)
		}
	}
}

func TestSearch_DeterministicAcrossRuns(t *testing.T) {
	pool := poolOf(10)
	a, err := Search(eligibleCriteria(), pool, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, err := Search(eligibleCriteria(), pool, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical inputs must produce identical ordering")
	}
}

func TestSearch_TieBreakByPhysicianIDAscending(t *testing.T) {
	// Two identical physicians score identically; order falls back to id.
	a := lookingPhysician()
	a.ID = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000")
	b := lookingPhysician()
	b.ID = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000000")

	for _, pool := range [][]physician.Physician{{a, b}, {b, a}} {
		results, err := Search(eligibleCriteria(), pool, DefaultConfig())
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].Score != results[1].Score {
			t.Fatalf("expected a tie, got %v vs %v", results[0].Score, results[1].Score)
		}
		if results[0].PhysicianID != a.ID || results[1].PhysicianID != b.ID {
			t.Fatalf("tie not broken by id ascending: %v, %v", results[0].PhysicianID, results[1].PhysicianID)
		}
	}
}

func TestSearch_ThresholdNeverIncreasesCount(t *testing.T) {
	pool := poolOf(10)
	all, err := Search(eligibleCriteria(), pool, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	c := eligibleCriteria()
	th := 0.6
	c.Threshold = &th
	filtered, err := Search(c, pool, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(filtered) > len(all) {
		t.Fatalf("threshold increased result count: %d > %d", len(filtered), len(all))
	}
	for _, r := range filtered {
		if r.Score < th {
			t.Fatalf("result below threshold leaked through: %v", r.Score)
		}
	}
}

func TestSearch_LimitPreservesTopPrefix(t *testing.T) {
	pool := poolOf(10)
	all, err := Search(eligibleCriteria(), pool, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	c := eligibleCriteria()
	limit := 3
	c.Limit = &limit
	capped, err := Search(c, pool, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(capped) != 3 {
		t.Fatalf("expected 3 results, got %d", len(capped))
	}
	if !reflect.DeepEqual(capped, all[:3]) {
		t.Fatal("limit must keep the top-scoring prefix")
	}
}

func TestSearch_BreakdownCarriesAllFiveCategories(t *testing.T) {
	results, err := Search(eligibleCriteria(), poolOf(1), DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []string{CategoryLocation, CategoryDuration, CategoryEMR, CategoryProvince, CategorySpeciality}
	for _, cat := range want {
		if _, ok := results[0].Breakdown[cat]; !ok {
			t.Fatalf("breakdown missing category %s", cat)
		}
	}
}
