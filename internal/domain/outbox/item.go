// Package outbox defines the notification outbox records. The matching
// engine only writes entries here; a separate delivery process picks them up
// and sends email/push/in-app.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeShortTermMatch Type = "SHORT_TERM_MATCH"
	TypeWeeklyDigest   Type = "WEEKLY_DIGEST"
)

// Item is one queued notification. SentAt nil means not yet sent.
type Item struct {
	ID          uuid.UUID
	Type        Type
	RecipientID uuid.UUID

	// Shape depends on Type: see ShortTermPayload and WeeklyDigestPayload.
	Payload json.RawMessage

	CreatedAt time.Time
	SentAt    *time.Time
	Attempts  int
	LastError string
}

// JobMatch is one matched job as it appears in notification payloads.
type JobMatch struct {
	JobID    uuid.UUID `json:"jobId"`
	Score    float64   `json:"score"`
	JobTitle string    `json:"jobTitle"`
}

// ShortTermPayload is the payload for TypeShortTermMatch items.
type ShortTermPayload struct {
	JobID    uuid.UUID `json:"jobId"`
	Score    float64   `json:"score"`
	JobTitle string    `json:"jobTitle"`
}

// WeeklyDigestPayload is the payload for TypeWeeklyDigest items: all of one
// physician's qualifying matches across the digest run.
type WeeklyDigestPayload struct {
	Matches []JobMatch `json:"matches"`
}
