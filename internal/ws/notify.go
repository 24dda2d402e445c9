package ws

import (
	"encoding/json"
	"time"

	"locum-match/internal/domain/run"
)

// RunEvent is the wire shape of one run lifecycle update.
type RunEvent struct {
	Type        string `json:"type"`
	RunID       string `json:"runId"`
	RunType     string `json:"runType"`
	Status      string `json:"status"`
	JobID       string `json:"jobId,omitempty"`
	Error       string `json:"error,omitempty"`
	ResultCount int    `json:"resultCount"`
	Timestamp   string `json:"timestamp"`
}

// Notifier adapts the hub to the orchestrators' notification hook.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) RunStatusChanged(r run.MatchRun) {
	if n == nil || n.hub == nil {
		return
	}

	evt := RunEvent{
		Type:        "run_status_changed",
		RunID:       r.ID.String(),
		RunType:     string(r.Type),
		Status:      string(r.Status),
		Error:       r.Error,
		ResultCount: r.ResultCount,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if r.JobID != nil {
		evt.JobID = r.JobID.String()
	}

	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.hub.Broadcast(b)
}
