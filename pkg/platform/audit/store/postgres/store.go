package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "lifeline/pkg/domain"
	audit "lifeline/pkg/platform/audit"
)

// Store implements audit.Store on PostgreSQL. Events are append-only; the
// table carries no update path.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append writes one audit event.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_events (id, category, occurred_at, user_id, subject, action, decision, reason, request_id, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		eventID,
		string(event.Category),
		ts,
		uuid.UUID(event.UserID),
		event.Subject,
		event.Action,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.ActorID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListByUser returns events for one user ordered oldest first.
func (s *Store) ListByUser(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	query := `
		SELECT category, occurred_at, user_id, subject, action, decision, reason, request_id, actor_id
		FROM audit_events
		WHERE user_id = $1
		ORDER BY occurred_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var event audit.Event
		var category string
		var rowUserID uuid.UUID
		if err := rows.Scan(&category, &event.Timestamp, &rowUserID, &event.Subject,
			&event.Action, &event.Decision, &event.Reason, &event.RequestID, &event.ActorID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.UserID = id.UserID(rowUserID)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
