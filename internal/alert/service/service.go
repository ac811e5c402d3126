// Package service implements emergency alert broadcasting.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"lifeline/internal/alert/models"
	"lifeline/internal/alert/store"
	"lifeline/internal/platform/metrics"
	"lifeline/internal/platform/redis"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/audit"
	"lifeline/pkg/platform/sentinel"
)

// Channel is the pub/sub channel live clients subscribe to for alert
// fan-out.
const Channel = "lifeline:alerts"

// AuditPublisher records alert lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// BroadcastInput carries a new alert. BloodType is optional; shortage
// alerts name the group they concern.
type BroadcastInput struct {
	Title     string
	Message   string
	Severity  string
	BloodType string
}

type Service struct {
	alerts  store.Store
	pubsub  *redis.Client
	auditor AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
	clock   func() time.Time
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

// New creates the alert service. pubsub may be nil; alerts are then stored
// and listed but not fanned out to live subscribers.
func New(
	alerts store.Store,
	pubsub *redis.Client,
	auditor AuditPublisher,
	logger *slog.Logger,
	m *metrics.Metrics,
	opts ...Option,
) *Service {
	s := &Service{
		alerts:  alerts,
		pubsub:  pubsub,
		auditor: auditor,
		logger:  logger,
		metrics: m,
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Broadcast stores a new alert and publishes it to the live channel. The
// store write is authoritative; a failed publish is logged, not surfaced,
// since the alert is still visible in the feed.
func (s *Service) Broadcast(ctx context.Context, callerID id.UserID, callerIsAdmin bool, input BroadcastInput) (*models.Alert, error) {
	if !callerIsAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can broadcast alerts")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "alert title is required")
	}

	alert := &models.Alert{
		ID:        id.AlertID(uuid.New()),
		Title:     strings.TrimSpace(input.Title),
		Message:   strings.TrimSpace(input.Message),
		Severity:  models.ParseSeverity(input.Severity),
		CreatedBy: callerID,
		Active:    true,
		CreatedAt: s.clock().UTC(),
	}
	if input.BloodType != "" {
		bloodType, err := id.ParseBloodType(input.BloodType)
		if err != nil {
			return nil, err
		}
		alert.BloodType = bloodType
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store alert")
	}

	s.publish(ctx, alert)
	if s.metrics != nil {
		s.metrics.AlertsBroadcast.Inc()
	}
	s.emit(ctx, audit.Event{
		Category: audit.CategoryOperations,
		UserID:   callerID,
		Subject:  alert.ID.String(),
		Action:   string(audit.EventAlertBroadcast),
		Reason:   string(alert.Severity),
	})
	return alert, nil
}

// UpdateInput carries the mutable alert fields. Empty fields are left
// unchanged.
type UpdateInput struct {
	Title     string
	Message   string
	Severity  string
	BloodType string
}

// Update revises an alert in place; the feed keeps showing it under the
// same id. Admin only.
func (s *Service) Update(ctx context.Context, callerID id.UserID, callerIsAdmin bool, alertID id.AlertID, input UpdateInput) (*models.Alert, error) {
	if !callerIsAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can update alerts")
	}

	alert, err := s.alerts.FindByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "alert not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load alert")
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		alert.Title = title
	}
	if message := strings.TrimSpace(input.Message); message != "" {
		alert.Message = message
	}
	if input.Severity != "" {
		alert.Severity = models.ParseSeverity(input.Severity)
	}
	if input.BloodType != "" {
		bloodType, err := id.ParseBloodType(input.BloodType)
		if err != nil {
			return nil, err
		}
		alert.BloodType = bloodType
	}

	if err := s.alerts.Update(ctx, alert); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update alert")
	}

	s.emit(ctx, audit.Event{
		Category: audit.CategoryOperations,
		UserID:   callerID,
		Subject:  alert.ID.String(),
		Action:   string(audit.EventAlertUpdated),
		ActorID:  callerID.String(),
	})
	return alert, nil
}

// ListActive returns the live alert feed, newest first.
func (s *Service) ListActive(ctx context.Context) ([]*models.Alert, error) {
	alerts, err := s.alerts.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list alerts")
	}
	return alerts, nil
}

// ListAll returns every alert, including deactivated ones. Admin only.
func (s *Service) ListAll(ctx context.Context, callerIsAdmin bool) ([]*models.Alert, error) {
	if !callerIsAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can list all alerts")
	}
	alerts, err := s.alerts.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list alerts")
	}
	return alerts, nil
}

// Deactivate retires an alert from the live feed without deleting it.
func (s *Service) Deactivate(ctx context.Context, callerID id.UserID, callerIsAdmin bool, alertID id.AlertID) (*models.Alert, error) {
	if !callerIsAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can deactivate alerts")
	}

	alert, err := s.alerts.Deactivate(ctx, alertID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "alert not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate alert")
	}

	s.emit(ctx, audit.Event{
		Category: audit.CategoryOperations,
		UserID:   callerID,
		Subject:  alert.ID.String(),
		Action:   string(audit.EventAlertDeactivated),
		ActorID:  callerID.String(),
	})
	return alert, nil
}

func (s *Service) publish(ctx context.Context, alert *models.Alert) {
	if s.pubsub == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"id":         alert.ID.String(),
		"title":      alert.Title,
		"message":    alert.Message,
		"severity":   string(alert.Severity),
		"blood_type": string(alert.BloodType),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode alert payload", "error", err)
		return
	}
	if err := s.pubsub.Publish(ctx, Channel, payload).Err(); err != nil {
		s.logger.WarnContext(ctx, "alert fan-out failed",
			"alert_id", alert.ID.String(),
			"error", err,
		)
	}
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
