package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"locum-match/internal/database"
	"locum-match/internal/domain/outbox"

	"github.com/google/uuid"
)

var ErrOutboxItemNotFound = errors.New("outbox item not found")

type NotificationOutboxRepository interface {
	// Enqueue writes items in one transaction, defaulting ids, createdAt and
	// the attempt counter. The matching engine only ever writes here;
	// delivery is someone else's process.
	Enqueue(ctx context.Context, items []outbox.Item) error
	// GetPending returns unsent items oldest-first, optionally filtered by
	// type ("" = all).
	GetPending(ctx context.Context, itemType outbox.Type) ([]outbox.Item, error)
	// MarkSent stamps sentAt and increments attempts. Unknown ids fail with
	// ErrOutboxItemNotFound rather than silently no-opping.
	MarkSent(ctx context.Context, itemID uuid.UUID) error
}

type PostgresNotificationOutboxRepository struct {
	db database.DB
}

func NewPostgresNotificationOutboxRepository(db database.DB) *PostgresNotificationOutboxRepository {
	return &PostgresNotificationOutboxRepository{db: db}
}

func (r *PostgresNotificationOutboxRepository) Enqueue(ctx context.Context, items []outbox.Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		if it.CreatedAt.IsZero() {
			it.CreatedAt = time.Now().UTC()
		}
		payload := it.Payload
		if len(payload) == 0 {
			payload = []byte("{}")
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO notification_outbox (id, item_type, recipient_id, payload, created_at, sent_at, attempts, last_error)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			it.ID, string(it.Type), it.RecipientID, []byte(payload), it.CreatedAt, it.SentAt, it.Attempts, it.LastError,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresNotificationOutboxRepository) GetPending(ctx context.Context, itemType outbox.Type) ([]outbox.Item, error) {
	query := `SELECT id, item_type, recipient_id, payload, created_at, sent_at, attempts, last_error
	          FROM notification_outbox WHERE sent_at IS NULL`
	args := []any{}
	if itemType != "" {
		query += ` AND item_type = $1`
		args = append(args, string(itemType))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]outbox.Item, 0)
	for rows.Next() {
		var it outbox.Item
		var rawType string
		var payload []byte
		if err := rows.Scan(&it.ID, &rawType, &it.RecipientID, &payload, &it.CreatedAt, &it.SentAt, &it.Attempts, &it.LastError); err != nil {
			return nil, err
		}
		it.Type = outbox.Type(rawType)
		it.Payload = payload
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresNotificationOutboxRepository) MarkSent(ctx context.Context, itemID uuid.UUID) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE notification_outbox
		 SET sent_at = $2, attempts = attempts + 1
		 WHERE id = $1`,
		itemID, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrOutboxItemNotFound, itemID)
	}
	return nil
}
