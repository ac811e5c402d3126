package store

import (
	"context"
	"errors"

	"lifeline/internal/approval/models"
	id "lifeline/pkg/domain"
)

// ErrAlreadyReviewed signals that a conditional status update lost: the
// request had already reached a terminal status. Services translate it into
// a Conflict so a second reviewer never silently succeeds.
var ErrAlreadyReviewed = errors.New("request already reviewed")

// Store is pure persistence for approval requests. All business rules live
// in the workflow service; the store's only guarantee beyond CRUD is that
// UpdateStatusIfPending is atomic with respect to concurrent reviewers.
type Store interface {
	Create(ctx context.Context, request *models.ApprovalRequest) error
	FindByID(ctx context.Context, requestID id.RequestID) (*models.ApprovalRequest, error)
	ListByRequesterAndType(ctx context.Context, requesterID id.UserID, requestType models.RequestType) ([]*models.ApprovalRequest, error)
	ListAll(ctx context.Context) ([]*models.ApprovalRequest, error)

	// UpdateStatusIfPending transitions the request to a terminal status and
	// records the reviewer, but only when the stored status is still pending.
	// Returns ErrAlreadyReviewed when the request is already terminal and
	// sentinel.ErrNotFound when it does not exist.
	UpdateStatusIfPending(ctx context.Context, requestID id.RequestID, status models.Status, reviewedBy id.UserID) (*models.ApprovalRequest, error)

	// ResetToPending reverts a terminal transition, clearing the reviewer.
	// Used only as the compensating action when the inventory write fails
	// after a successful status transition.
	ResetToPending(ctx context.Context, requestID id.RequestID) (*models.ApprovalRequest, error)

	Delete(ctx context.Context, requestID id.RequestID) error
}
