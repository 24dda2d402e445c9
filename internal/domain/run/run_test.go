package run_test

import (
	"testing"

	"locum-match/internal/domain/run"
)

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{"PENDING", "RUNNING", "COMPLETED", "FAILED"}
	for _, s := range valid {
		got, err := run.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	if _, err := run.ParseStatus("ABORTED"); err == nil {
		t.Error("ParseStatus(\"ABORTED\") expected error, got nil")
	}
	if _, err := run.ParseStatus(""); err == nil {
		t.Error("ParseStatus(\"\") expected error, got nil")
	}
}

func TestParseType(t *testing.T) {
	for _, s := range []string{"SHORT_TERM", "WEEKLY_DIGEST"} {
		got, err := run.ParseType(s)
		if err != nil {
			t.Errorf("ParseType(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseType(%q) = %q, want %q", s, got, s)
		}
	}
	if _, err := run.ParseType("MONTHLY"); err == nil {
		t.Error("ParseType(\"MONTHLY\") expected error, got nil")
	}
}

func TestIsTransitionAllowed_ValidForward(t *testing.T) {
	cases := []struct {
		from run.Status
		to   run.Status
	}{
		{run.StatusPending, run.StatusRunning},
		{run.StatusPending, run.StatusFailed},
		{run.StatusRunning, run.StatusCompleted},
		{run.StatusRunning, run.StatusFailed},
	}
	for _, c := range cases {
		if !run.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s, %s) should return true", c.from, c.to)
		}
	}
}

func TestIsTransitionAllowed_NoBackwardMoves(t *testing.T) {
	cases := []struct {
		from run.Status
		to   run.Status
	}{
		{run.StatusRunning, run.StatusPending},
		{run.StatusCompleted, run.StatusRunning},
		{run.StatusCompleted, run.StatusPending},
		{run.StatusFailed, run.StatusRunning},
		{run.StatusFailed, run.StatusPending},
		{run.StatusPending, run.StatusCompleted},
	}
	for _, c := range cases {
		if run.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s, %s) should return false", c.from, c.to)
		}
	}
}

func TestTerminalStatesHaveNoOutgoingTransitions(t *testing.T) {
	all := []run.Status{run.StatusPending, run.StatusRunning, run.StatusCompleted, run.StatusFailed}
	for _, terminal := range []run.Status{run.StatusCompleted, run.StatusFailed} {
		if !run.IsTerminal(terminal) {
			t.Errorf("IsTerminal(%s) should return true", terminal)
		}
		for _, to := range all {
			if run.IsTransitionAllowed(terminal, to) {
				t.Errorf("terminal state %s must not transition to %s", terminal, to)
			}
		}
	}
	if run.IsTerminal(run.StatusPending) || run.IsTerminal(run.StatusRunning) {
		t.Error("PENDING and RUNNING must not be terminal")
	}
}
