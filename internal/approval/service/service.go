// Package service implements the approval workflow: the lifecycle that turns
// a raised donation or blood-request into an approved or rejected outcome
// while keeping blood-sample inventory consistent.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lifeline/internal/approval/models"
	"lifeline/internal/approval/store"
	invmodels "lifeline/internal/inventory/models"
	"lifeline/internal/platform/metrics"
	usermodels "lifeline/internal/user/models"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/audit"
	"lifeline/pkg/platform/sentinel"
)

// Identity is the authenticated caller, as established by the token
// middleware.
type Identity struct {
	UserID  id.UserID
	IsAdmin bool
}

// UserDirectory resolves user records for snapshotting at creation time.
type UserDirectory interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
}

// InventoryLedger is the slice of the inventory service the workflow needs:
// resolving a sample for a blood group at creation, and the absolute unit
// overwrite applied on approved donations.
type InventoryLedger interface {
	FindByType(ctx context.Context, bloodType id.BloodType) (*invmodels.Sample, error)
	SetUnits(ctx context.Context, sampleID id.SampleID, units int) (*invmodels.Sample, error)
}

// AuditPublisher records workflow decisions for the audit trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates creation, review, and inventory reconciliation of
// approval requests. All role and state invariants are enforced here, before
// any store is touched.
type Service struct {
	requests store.Store
	users    UserDirectory
	ledger   InventoryLedger
	auditor  AuditPublisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	clock    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(
	requests store.Store,
	users UserDirectory,
	ledger InventoryLedger,
	auditor AuditPublisher,
	logger *slog.Logger,
	m *metrics.Metrics,
	opts ...Option,
) *Service {
	s := &Service{
		requests: requests,
		users:    users,
		ledger:   ledger,
		auditor:  auditor,
		logger:   logger,
		metrics:  m,
		clock:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create raises a new approval request on behalf of the caller. Admins may
// not raise requests. The requester's name, blood group, dob and matching
// blood sample id are snapshotted from the user record now; review never
// re-reads them.
func (s *Service) Create(ctx context.Context, identity Identity, requestType string, units int, disease string) (*models.ApprovalRequest, error) {
	if identity.UserID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if identity.IsAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "admins cannot raise or donate")
	}

	parsedType, err := models.ParseRequestType(requestType)
	if err != nil {
		return nil, err
	}
	if units <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "units must be positive")
	}

	user, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve requester")
	}

	sampleID := user.BloodSampleID
	if sampleID.IsNil() {
		// Older accounts were registered before sample assignment; resolve
		// the ledger entry for the declared blood group now.
		sample, err := s.ledger.FindByType(ctx, user.BloodGroup)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "no inventory entry for requester blood group")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve blood sample")
		}
		sampleID = sample.ID
	}

	request := &models.ApprovalRequest{
		ID:            id.RequestID(uuid.New()),
		Type:          parsedType,
		RequesterID:   user.ID,
		RequesterName: user.FullName(),
		BloodGroup:    user.BloodGroup,
		BloodSampleID: sampleID,
		DOB:           user.DOB,
		Units:         units,
		Disease:       disease,
		Status:        models.StatusPending,
		CreatedAt:     s.clock().UTC(),
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create approval request")
	}

	if s.metrics != nil {
		s.metrics.ApprovalRequestsCreated.Inc()
	}
	s.emit(ctx, audit.Event{
		Category: audit.CategoryOperations,
		UserID:   user.ID,
		Subject:  request.ID.String(),
		Action:   string(audit.EventRequestCreated),
		Reason:   string(parsedType),
	})
	return request, nil
}

// Review decides a pending request. The status transition and reviewer are
// applied as one conditional update, so concurrent reviewers cannot both
// succeed; the loser sees a Conflict, and a terminal request is never
// re-applied to inventory.
func (s *Service) Review(ctx context.Context, identity Identity, requestID id.RequestID, decision string) (*models.ApprovalRequest, error) {
	if !identity.IsAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can review requests")
	}

	parsedDecision, err := models.ParseDecision(decision)
	if err != nil {
		return nil, err
	}

	updated, err := s.requests.UpdateStatusIfPending(ctx, requestID, parsedDecision, identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "approval request not found")
		case errors.Is(err, store.ErrAlreadyReviewed):
			return nil, dErrors.New(dErrors.CodeConflict, "request already reviewed")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update approval request")
		}
	}

	// Inventory is touched only when a donation is approved: the request's
	// snapshot unit count replaces the stored value outright.
	if parsedDecision == models.StatusApproved && updated.Type == models.TypeDonation {
		if _, err := s.ledger.SetUnits(ctx, updated.BloodSampleID, updated.Units); err != nil {
			return nil, s.compensate(ctx, updated, err)
		}
		s.emit(ctx, audit.Event{
			Category: audit.CategoryCompliance,
			UserID:   updated.RequesterID,
			Subject:  updated.BloodSampleID.String(),
			Action:   string(audit.EventInventoryAdjusted),
			ActorID:  identity.UserID.String(),
		})
	}

	if s.metrics != nil {
		s.metrics.ReviewRecorded(string(parsedDecision))
	}
	action := audit.EventRequestApproved
	if parsedDecision == models.StatusRejected {
		action = audit.EventRequestRejected
	}
	s.emit(ctx, audit.Event{
		Category: audit.CategoryCompliance,
		UserID:   updated.RequesterID,
		Subject:  updated.ID.String(),
		Action:   string(action),
		Decision: string(parsedDecision),
		ActorID:  identity.UserID.String(),
	})
	return updated, nil
}

// compensate reverts the status transition after a failed inventory write.
// When the revert itself fails the request is left approved with no matching
// ledger write, so the caller gets a PartialFailure for manual
// reconciliation instead of a silent divergence.
func (s *Service) compensate(ctx context.Context, request *models.ApprovalRequest, cause error) error {
	s.logger.ErrorContext(ctx, "inventory write failed after status transition",
		"request_id", request.ID.String(),
		"blood_sample_id", request.BloodSampleID.String(),
		"error", cause,
	)

	if _, resetErr := s.requests.ResetToPending(ctx, request.ID); resetErr != nil {
		if s.metrics != nil {
			s.metrics.PartialFailures.Inc()
		}
		s.logger.ErrorContext(ctx, "compensation failed; request left in partially applied state",
			"request_id", request.ID.String(),
			"error", resetErr,
		)
		return dErrors.Wrap(cause, dErrors.CodePartialFailure, "review applied but inventory update failed; manual reconciliation required")
	}
	return dErrors.Wrap(cause, dErrors.CodeInternal, "inventory update failed; request returned to pending")
}

// ListByRequester returns the caller's own requests of one type.
func (s *Service) ListByRequester(ctx context.Context, identity Identity, requestType string) ([]*models.ApprovalRequest, error) {
	if identity.UserID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	parsedType, err := models.ParseRequestType(requestType)
	if err != nil {
		return nil, err
	}

	requests, err := s.requests.ListByRequesterAndType(ctx, identity.UserID, parsedType)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list approval requests")
	}
	return requests, nil
}

// ListAll returns every request for the admin review screen, each augmented
// with the age derived from the dob snapshot. Records without a usable dob
// carry no age rather than a computed default.
func (s *Service) ListAll(ctx context.Context, identity Identity) ([]*models.ReviewedRequest, error) {
	if !identity.IsAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can list all requests")
	}

	requests, err := s.requests.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list approval requests")
	}

	now := s.clock()
	reviewed := make([]*models.ReviewedRequest, 0, len(requests))
	for _, request := range requests {
		entry := &models.ReviewedRequest{ApprovalRequest: *request}
		if age, ok := id.AgeFromDOB(request.DOB, now); ok {
			entry.Age = &age
		}
		reviewed = append(reviewed, entry)
	}
	return reviewed, nil
}

// Delete removes a request in any state. Only the owner or an admin may
// delete.
func (s *Service) Delete(ctx context.Context, identity Identity, requestID id.RequestID) error {
	if identity.UserID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}

	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "approval request not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load approval request")
	}
	if !identity.IsAdmin && request.RequesterID != identity.UserID {
		return dErrors.New(dErrors.CodeForbidden, "only the owner or an admin can delete a request")
	}

	if err := s.requests.Delete(ctx, requestID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "approval request not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete approval request")
	}

	s.emit(ctx, audit.Event{
		Category: audit.CategoryOperations,
		UserID:   request.RequesterID,
		Subject:  request.ID.String(),
		Action:   string(audit.EventRequestDeleted),
		ActorID:  identity.UserID.String(),
	})
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", event.Action,
			"error", err,
		)
	}
}
