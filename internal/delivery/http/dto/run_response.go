package dto

import (
	"time"

	"locum-match/internal/domain/run"
)

type MatchRunResponse struct {
	RunID       string     `json:"runId"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	JobID       *string    `json:"jobId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Error       string     `json:"error,omitempty"`
	ResultCount int        `json:"resultCount"`
}

func NewMatchRunResponse(m run.MatchRun) MatchRunResponse {
	out := MatchRunResponse{
		RunID:       m.ID.String(),
		Type:        string(m.Type),
		Status:      string(m.Status),
		CreatedAt:   m.CreatedAt,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
		Error:       m.Error,
		ResultCount: m.ResultCount,
	}
	if m.JobID != nil {
		id := m.JobID.String()
		out.JobID = &id
	}
	return out
}

type MatchResultResponse struct {
	PhysicianID string             `json:"physicianId"`
	JobID       string             `json:"jobId"`
	Score       float64            `json:"score"`
	Breakdown   map[string]float64 `json:"breakdown"`
	ComputedAt  time.Time          `json:"computedAt"`
}

func NewMatchResultResponses(rows []run.MatchRunResult) []MatchResultResponse {
	out := make([]MatchResultResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, MatchResultResponse{
			PhysicianID: row.PhysicianID.String(),
			JobID:       row.JobID.String(),
			Score:       row.Score,
			Breakdown:   row.Breakdown,
			ComputedAt:  row.ComputedAt,
		})
	}
	return out
}
