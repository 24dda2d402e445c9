package reporting

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"locum-match/internal/domain/job"
	"locum-match/internal/domain/matching"
	"locum-match/internal/domain/physician"

	"github.com/google/uuid"
)

func reportJob() job.LocumJob {
	return job.LocumJob{
		ID:          uuid.New(),
		JobID:       "EuXagtm",
		PostTitle:   "Family Medicine Locum",
		FullAddress: physician.Address{City: "Toronto", Province: "ON"},
		DateRange: physician.DateRange{
			From: time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2026, 7, 21, 0, 0, 0, 0, time.UTC),
		},
	}
}

func result(score float64, breakdown map[string]float64) matching.Result {
	if breakdown == nil {
		breakdown = map[string]float64{}
	}
	return matching.Result{PhysicianID: uuid.New(), Score: score, Breakdown: breakdown}
}

func TestComputeStats(t *testing.T) {
	results := []matching.Result{
		result(0.9, nil),
		result(0.5, map[string]float64{matching.CategoryLocation: matching.NeutralScore}),
		result(0.7, map[string]float64{matching.CategoryLocation: matching.NeutralScore}),
		result(0.1, nil),
	}

	s := ComputeStats(results)
	if s.Total != 4 {
		t.Fatalf("total: got %d", s.Total)
	}
	if s.Min != 0.1 || s.Max != 0.9 {
		t.Fatalf("min/max: got %v/%v", s.Min, s.Max)
	}
	if math.Abs(s.Mean-0.55) > 1e-9 {
		t.Fatalf("mean: got %v", s.Mean)
	}
	if math.Abs(s.Median-0.6) > 1e-9 {
		t.Fatalf("median: got %v", s.Median)
	}
	if s.MissingData[matching.CategoryLocation] != 0.5 {
		t.Fatalf("missing location fraction: got %v", s.MissingData[matching.CategoryLocation])
	}
}

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil)
	if s.Total != 0 || s.Min != 0 || s.Max != 0 {
		t.Fatalf("empty stats should be zero: %+v", s)
	}
}

func TestGenerate_CSVShowsTopKStatsCoverAll(t *testing.T) {
	results := make([]matching.Result, 0, 5)
	for _, sc := range []float64{0.9, 0.8, 0.7, 0.6, 0.2} {
		results = append(results, result(sc, map[string]float64{
			matching.CategoryLocation:   sc,
			matching.CategoryDuration:   sc,
			matching.CategoryEMR:        matching.NeutralScore,
			matching.CategoryProvince:   sc,
			matching.CategorySpeciality: 1.0,
		}))
	}

	rep, err := Generate(
		[]Section{{Job: reportJob(), Results: results}},
		Options{TopK: 3, Format: FormatCSV},
		time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	out := string(rep.Content)
	lines := strings.Split(strings.TrimSpace(out), "\n")

	var physicianRows, summaryRows int
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "1,") || strings.HasPrefix(line, "2,") || strings.HasPrefix(line, "3,"):
			physicianRows++
		case strings.HasPrefix(line, "summary,"):
			summaryRows++
			if !strings.Contains(line, "candidates=5") {
				t.Fatalf("summary must cover the full set: %s", line)
			}
		}
	}
	if physicianRows != 3 {
		t.Fatalf("expected 3 physician rows, got %d", physicianRows)
	}
	if summaryRows != 1 {
		t.Fatalf("expected 1 summary row, got %d", summaryRows)
	}

	// The top score 0.9 shows as 4.50 on the 0-5 scale.
	if !strings.Contains(out, "4.50") {
		t.Fatalf("expected 0-5 display scores in:\n%s", out)
	}
	if !strings.Contains(out, "missing_data,emr,100%") {
		t.Fatalf("expected an emr missing-data flag in:\n%s", out)
	}
}

func TestGenerate_CSVSortsBeforeRanking(t *testing.T) {
	low := result(0.2, nil)
	high := result(0.9, nil)

	rep, err := Generate(
		[]Section{{Job: reportJob(), Results: []matching.Result{low, high}}},
		Options{Format: FormatCSV},
		time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(rep.Content)), "\n")
	for _, line := range lines {
		if strings.HasPrefix(line, "1,") {
			if !strings.Contains(line, high.PhysicianID.String()) {
				t.Fatalf("rank 1 should be the top scorer: %s", line)
			}
			return
		}
	}
	t.Fatalf("no rank 1 row found")
}

func TestGenerate_JSON(t *testing.T) {
	j := reportJob()
	rep, err := Generate(
		[]Section{{Job: j, Results: []matching.Result{result(0.8, nil)}}},
		Options{Format: FormatJSON},
		time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var decoded struct {
		Sections []struct {
			JobCode string `json:"jobCode"`
			Top     []struct {
				Score float64 `json:"score"`
			} `json:"top"`
			Stats struct {
				Total int `json:"total"`
			} `json:"stats"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(rep.Content, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(decoded.Sections) != 1 {
		t.Fatalf("expected 1 section")
	}
	sec := decoded.Sections[0]
	if sec.JobCode != j.JobID || len(sec.Top) != 1 || sec.Top[0].Score != 0.8 || sec.Stats.Total != 1 {
		t.Fatalf("unexpected section: %+v", sec)
	}
}

func TestGenerate_UnknownFormat(t *testing.T) {
	_, err := Generate(nil, Options{Format: "xml"}, time.Now().UTC())
	if err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
