// Package reporting renders ranked match results into operator-facing
// reports. It is pure: callers pass the data in, nothing here touches
// storage.
package reporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"locum-match/internal/domain/job"
	"locum-match/internal/domain/matching"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"

	defaultTopK = 10
)

// Section is one job's worth of ranked results.
type Section struct {
	Job     job.LocumJob
	Results []matching.Result
}

type Options struct {
	// Results shown per job. Stats always cover the full set.
	TopK   int
	Format string
}

// Stats summarizes the FULL result set of a section, not just the rows shown.
type Stats struct {
	Total  int     `json:"total"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`

	// Fraction of physicians scored neutrally per category, i.e. where the
	// data needed to score them was missing.
	MissingData map[string]float64 `json:"missingData"`
}

type Report struct {
	GeneratedAt time.Time
	Format      string
	Content     []byte
}

// Generate renders the sections in the requested format. Results inside each
// section are re-sorted so callers do not have to guarantee order.
func Generate(sections []Section, opts Options, generatedAt time.Time) (Report, error) {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.Format == "" {
		opts.Format = FormatCSV
	}

	for i := range sections {
		sortResults(sections[i].Results)
	}

	switch opts.Format {
	case FormatCSV:
		content, err := renderCSV(sections, opts, generatedAt)
		if err != nil {
			return Report{}, err
		}
		return Report{GeneratedAt: generatedAt, Format: FormatCSV, Content: content}, nil
	case FormatJSON:
		content, err := renderJSON(sections, opts, generatedAt)
		if err != nil {
			return Report{}, err
		}
		return Report{GeneratedAt: generatedAt, Format: FormatJSON, Content: content}, nil
	default:
		return Report{}, fmt.Errorf("unsupported report format %q", opts.Format)
	}
}

func sortResults(results []matching.Result) {
	sort.Slice(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].PhysicianID.String() < results[b].PhysicianID.String()
	})
}

// ComputeStats aggregates the whole result set of one section.
func ComputeStats(results []matching.Result) Stats {
	s := Stats{Total: len(results), MissingData: map[string]float64{}}
	if len(results) == 0 {
		return s
	}

	scores := make([]float64, len(results))
	neutral := map[string]int{}
	var sum float64
	for i, r := range results {
		scores[i] = r.Score
		sum += r.Score
		for cat, v := range r.Breakdown {
			if v == matching.NeutralScore {
				neutral[cat]++
			}
		}
	}
	sort.Float64s(scores)

	s.Min = scores[0]
	s.Max = scores[len(scores)-1]
	s.Mean = sum / float64(len(scores))
	if n := len(scores); n%2 == 1 {
		s.Median = scores[n/2]
	} else {
		s.Median = (scores[n/2-1] + scores[n/2]) / 2
	}

	for cat, count := range neutral {
		s.MissingData[cat] = float64(count) / float64(len(results))
	}
	return s
}

// displayScore converts a [0,1] score to the 0-5 scale the report shows.
func displayScore(score float64) string {
	return fmt.Sprintf("%.2f", score*5)
}

func renderCSV(sections []Section, opts Options, generatedAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	write := func(record []string) error {
		return w.Write(record)
	}

	if err := write([]string{"report_generated_at", generatedAt.UTC().Format(time.RFC3339)}); err != nil {
		return nil, err
	}

	categories := []string{
		matching.CategoryLocation,
		matching.CategoryDuration,
		matching.CategoryEMR,
		matching.CategoryProvince,
		matching.CategorySpeciality,
	}

	for _, sec := range sections {
		j := sec.Job
		if err := write([]string{
			"job",
			j.JobID,
			j.PostTitle,
			j.FullAddress.City,
			j.FullAddress.Province,
			j.DateRange.From.Format("2006-01-02"),
			j.DateRange.To.Format("2006-01-02"),
		}); err != nil {
			return nil, err
		}

		header := append([]string{"rank", "physician_id", "score_0_5"}, categories...)
		if err := write(header); err != nil {
			return nil, err
		}

		shown := sec.Results
		if len(shown) > opts.TopK {
			shown = shown[:opts.TopK]
		}
		for i, r := range shown {
			record := []string{
				fmt.Sprintf("%d", i+1),
				r.PhysicianID.String(),
				displayScore(r.Score),
			}
			for _, cat := range categories {
				record = append(record, displayScore(r.Breakdown[cat]))
			}
			if err := write(record); err != nil {
				return nil, err
			}
		}

		stats := ComputeStats(sec.Results)
		if err := write([]string{
			"summary",
			fmt.Sprintf("candidates=%d", stats.Total),
			fmt.Sprintf("min=%s", displayScore(stats.Min)),
			fmt.Sprintf("max=%s", displayScore(stats.Max)),
			fmt.Sprintf("mean=%s", displayScore(stats.Mean)),
			fmt.Sprintf("median=%s", displayScore(stats.Median)),
		}); err != nil {
			return nil, err
		}
		for _, cat := range categories {
			if pct, ok := stats.MissingData[cat]; ok && pct > 0 {
				if err := write([]string{"missing_data", cat, fmt.Sprintf("%.0f%%", pct*100)}); err != nil {
					return nil, err
				}
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type jsonSection struct {
	JobID    string       `json:"jobId"`
	JobCode  string       `json:"jobCode"`
	JobTitle string       `json:"jobTitle"`
	City     string       `json:"city"`
	Province string       `json:"province"`
	DateFrom string       `json:"dateFrom"`
	DateTo   string       `json:"dateTo"`
	Top      []jsonResult `json:"top"`
	Stats    Stats        `json:"stats"`
}

type jsonResult struct {
	PhysicianID string             `json:"physicianId"`
	Score       float64            `json:"score"`
	Breakdown   map[string]float64 `json:"breakdown"`
}

func renderJSON(sections []Section, opts Options, generatedAt time.Time) ([]byte, error) {
	out := struct {
		GeneratedAt time.Time     `json:"generatedAt"`
		Sections    []jsonSection `json:"sections"`
	}{GeneratedAt: generatedAt.UTC(), Sections: make([]jsonSection, 0, len(sections))}

	for _, sec := range sections {
		j := sec.Job
		shown := sec.Results
		if len(shown) > opts.TopK {
			shown = shown[:opts.TopK]
		}
		js := jsonSection{
			JobID:    j.ID.String(),
			JobCode:  j.JobID,
			JobTitle: j.PostTitle,
			City:     j.FullAddress.City,
			Province: j.FullAddress.Province,
			DateFrom: j.DateRange.From.Format("2006-01-02"),
			DateTo:   j.DateRange.To.Format("2006-01-02"),
			Stats:    ComputeStats(sec.Results),
		}
		for _, r := range shown {
			js.Top = append(js.Top, jsonResult{
				PhysicianID: r.PhysicianID.String(),
				Score:       r.Score,
				Breakdown:   r.Breakdown,
			})
		}
		out.Sections = append(out.Sections, js)
	}

	return json.MarshalIndent(out, "", "  ")
}
