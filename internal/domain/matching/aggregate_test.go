package matching

import (
	"math"
	"testing"
)

func TestAggregate_NormalizesByAppliedWeights(t *testing.T) {
	weights := map[string]float64{
		CategoryLocation:   2,
		CategorySpeciality: 2,
		CategoryEMR:        1,
	}
	breakdown := map[string]float64{
		CategoryLocation:   1.0,
		CategorySpeciality: 0.5,
		CategoryEMR:        0.0,
	}
	got := Aggregate(breakdown, weights)
	want := (2*1.0 + 2*0.5 + 1*0.0) / 5.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestAggregate_SkippedCategoryExcludedFromDenominator(t *testing.T) {
	weights := map[string]float64{
		CategoryLocation: 1,
		CategoryEMR:      1,
	}
	// EMR was never scored: it must not drag the total down as a zero.
	breakdown := map[string]float64{
		CategoryLocation: 0.8,
	}
	if got := Aggregate(breakdown, weights); got != 0.8 {
		t.Fatalf("absent category must be excluded entirely, got %v", got)
	}
}

func TestAggregate_UnweightedCategoryIgnored(t *testing.T) {
	weights := map[string]float64{CategoryLocation: 1}
	breakdown := map[string]float64{
		CategoryLocation: 0.6,
		"bedside_manner": 1.0, // future category with no weight configured
	}
	if got := Aggregate(breakdown, weights); got != 0.6 {
		t.Fatalf("category without weight must not contribute, got %v", got)
	}
}

func TestAggregate_EmptyInputs(t *testing.T) {
	if got := Aggregate(map[string]float64{}, map[string]float64{CategoryEMR: 1}); got != 0 {
		t.Fatalf("empty breakdown must aggregate to 0, got %v", got)
	}
	if got := Aggregate(map[string]float64{CategoryEMR: 1}, nil); got != 0 {
		t.Fatalf("no weights must aggregate to 0, got %v", got)
	}
}

func TestAggregate_BitIdenticalAcrossCalls(t *testing.T) {
	weights := DefaultConfig().Weights
	breakdown := map[string]float64{
		CategoryLocation:   0.3,
		CategoryDuration:   0.7,
		CategoryEMR:        0.5,
		CategoryProvince:   0.8,
		CategorySpeciality: 1.0,
	}

	// Float addition is not associative, so any dependence on map iteration
	// order shows up as more than one bit pattern over repeated calls.
	first := math.Float64bits(Aggregate(breakdown, weights))
	for i := 0; i < 20000; i++ {
		if got := math.Float64bits(Aggregate(breakdown, weights)); got != first {
			t.Fatalf("call %d produced a different bit pattern: %x vs %x", i, got, first)
		}
	}
}

func TestAggregate_OutputWithinUnitInterval(t *testing.T) {
	weights := map[string]float64{CategoryLocation: 3, CategoryEMR: 0.5}
	breakdown := map[string]float64{CategoryLocation: 1, CategoryEMR: 1}
	got := Aggregate(breakdown, weights)
	if got < 0 || got > 1 {
		t.Fatalf("aggregate out of range: %v", got)
	}
}
