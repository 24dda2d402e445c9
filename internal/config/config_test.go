package config

import (
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "locum-match")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "8080")
}

func TestLoad_RelatedSpecialitiesReachTheEngine(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MATCH_RELATED_SPECIALITIES", "Emergency Medicine=Family Medicine:0.7, internal medicine=family medicine:0.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	related := cfg.MatchingEngine().Scoring.RelatedSpecialities
	if related == nil {
		t.Fatalf("related specialities not wired into the engine config")
	}
	if got := related["emergency medicine"]["family medicine"]; got != 0.7 {
		t.Fatalf("expected 0.7 for forward lookup, got %v", got)
	}
	if got := related["family medicine"]["emergency medicine"]; got != 0.7 {
		t.Fatalf("expected symmetric 0.7, got %v", got)
	}
	if got := related["internal medicine"]["family medicine"]; got != 0.5 {
		t.Fatalf("expected 0.5 for second pair, got %v", got)
	}
}

func TestLoad_RelatedSpecialitiesSkipsMalformedEntries(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MATCH_RELATED_SPECIALITIES", "no separator, a=b:not-a-number, =c:0.4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Matching.RelatedSpecialities != nil {
		t.Fatalf("expected nil map when every entry is malformed, got %v", cfg.Matching.RelatedSpecialities)
	}
}

func TestLoad_ConflictStatusesDefaultAndOverride(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []string{"Pending", "In Progress", "Ongoing"}
	if len(cfg.Matching.ConflictReservationStatuses) != len(want) {
		t.Fatalf("expected default %v, got %v", want, cfg.Matching.ConflictReservationStatuses)
	}
	for i, s := range want {
		if cfg.Matching.ConflictReservationStatuses[i] != s {
			t.Fatalf("expected default %v, got %v", want, cfg.Matching.ConflictReservationStatuses)
		}
	}

	t.Setenv("MATCH_CONFLICT_STATUSES", "Pending,Confirmed")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(cfg.Matching.ConflictReservationStatuses) != 2 || cfg.Matching.ConflictReservationStatuses[1] != "Confirmed" {
		t.Fatalf("override not applied: %v", cfg.Matching.ConflictReservationStatuses)
	}
}
