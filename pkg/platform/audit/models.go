package audit

import (
	"context"
	"time"

	id "lifeline/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// Examples: user creation/deletion, approval decisions over donations.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	// Examples: auth failures, admin deletions.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	UserID    id.UserID
	Subject   string
	Action    string
	Decision  string
	Reason    string
	RequestID string
	// ActorID tracks who performed the action when different from UserID.
	// Used for admin reviews where an admin acts on a requester's record.
	ActorID string
}

type AuditEvent string

const (
	// User events
	EventUserCreated AuditEvent = "user_created"
	EventUserDeleted AuditEvent = "user_deleted"
	EventAuthFailed  AuditEvent = "auth_failed"

	// Approval workflow events
	EventRequestCreated  AuditEvent = "request_created"
	EventRequestApproved AuditEvent = "request_approved"
	EventRequestRejected AuditEvent = "request_rejected"
	EventRequestDeleted  AuditEvent = "request_deleted"

	// Inventory events
	EventInventoryAdjusted AuditEvent = "inventory_adjusted"

	// Alert events
	EventAlertBroadcast   AuditEvent = "alert_broadcast"
	EventAlertUpdated     AuditEvent = "alert_updated"
	EventAlertDeactivated AuditEvent = "alert_deactivated"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
