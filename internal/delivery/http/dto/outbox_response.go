package dto

import (
	"encoding/json"
	"time"

	"locum-match/internal/domain/outbox"
)

type OutboxItemResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	RecipientID string          `json:"recipientId"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"createdAt"`
	SentAt      *time.Time      `json:"sentAt,omitempty"`
	Attempts    int             `json:"attempts"`
}

func NewOutboxItemResponses(items []outbox.Item) []OutboxItemResponse {
	out := make([]OutboxItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, OutboxItemResponse{
			ID:          it.ID.String(),
			Type:        string(it.Type),
			RecipientID: it.RecipientID.String(),
			Payload:     it.Payload,
			CreatedAt:   it.CreatedAt,
			SentAt:      it.SentAt,
			Attempts:    it.Attempts,
		})
	}
	return out
}
