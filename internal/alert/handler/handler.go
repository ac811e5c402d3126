// Package handler exposes the emergency alert feed over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lifeline/internal/alert/models"
	"lifeline/internal/alert/service"
	"lifeline/internal/platform/metrics"
	"lifeline/internal/platform/middleware"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/httputil"
)

// Service defines the alert operations the handler exposes.
type Service interface {
	Broadcast(ctx context.Context, callerID id.UserID, callerIsAdmin bool, input service.BroadcastInput) (*models.Alert, error)
	ListActive(ctx context.Context) ([]*models.Alert, error)
	ListAll(ctx context.Context, callerIsAdmin bool) ([]*models.Alert, error)
	Update(ctx context.Context, callerID id.UserID, callerIsAdmin bool, alertID id.AlertID, input service.UpdateInput) (*models.Alert, error)
	Deactivate(ctx context.Context, callerID id.UserID, callerIsAdmin bool, alertID id.AlertID) (*models.Alert, error)
}

type Handler struct {
	logger    *slog.Logger
	alerts    Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

func New(alerts Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		alerts:    alerts,
		metrics:   m,
		validator: validator,
	}
}

// Register mounts the alert routes.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(h.metrics))
	router.Use(middleware.RequireAuth(h.validator, h.logger))

	router.Post("/", h.handleBroadcast)
	router.Get("/", h.handleListActive)
	router.Get("/all", h.handleListAll)
	router.Put("/{alertID}", h.handleUpdate)
	router.Post("/{alertID}/deactivate", h.handleDeactivate)

	r.Mount("/alerts", router)
}

type broadcastRequest struct {
	Title     string `json:"title"`
	Message   string `json:"message"`
	Severity  string `json:"severity,omitempty"`
	BloodType string `json:"blood_type,omitempty"`
}

type alertResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	BloodType string `json:"blood_type,omitempty"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

func toResponse(alert *models.Alert) alertResponse {
	return alertResponse{
		ID:        alert.ID.String(),
		Title:     alert.Title,
		Message:   alert.Message,
		Severity:  string(alert.Severity),
		BloodType: string(alert.BloodType),
		Active:    alert.Active,
		CreatedAt: alert.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, ok := h.callerID(ctx, w)
	if !ok {
		return
	}

	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	alert, err := h.alerts.Broadcast(ctx, callerID, middleware.IsAdmin(ctx), service.BroadcastInput{
		Title:     req.Title,
		Message:   req.Message,
		Severity:  req.Severity,
		BloodType: req.BloodType,
	})
	if err != nil {
		h.logError(ctx, "failed to broadcast alert", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(alert))
}

func (h *Handler) handleListActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	alerts, err := h.alerts.ListActive(ctx)
	if err != nil {
		h.logError(ctx, "failed to list alerts", err)
		httputil.WriteError(w, err)
		return
	}
	h.writeList(w, alerts)
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	alerts, err := h.alerts.ListAll(ctx, middleware.IsAdmin(ctx))
	if err != nil {
		h.logError(ctx, "failed to list all alerts", err)
		httputil.WriteError(w, err)
		return
	}
	h.writeList(w, alerts)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, ok := h.callerID(ctx, w)
	if !ok {
		return
	}

	alertID, err := id.ParseAlertID(chi.URLParam(r, "alertID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid alert id"))
		return
	}

	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	alert, err := h.alerts.Update(ctx, callerID, middleware.IsAdmin(ctx), alertID, service.UpdateInput{
		Title:     req.Title,
		Message:   req.Message,
		Severity:  req.Severity,
		BloodType: req.BloodType,
	})
	if err != nil {
		h.logError(ctx, "failed to update alert", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(alert))
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, ok := h.callerID(ctx, w)
	if !ok {
		return
	}

	alertID, err := id.ParseAlertID(chi.URLParam(r, "alertID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid alert id"))
		return
	}

	alert, err := h.alerts.Deactivate(ctx, callerID, middleware.IsAdmin(ctx), alertID)
	if err != nil {
		h.logError(ctx, "failed to deactivate alert", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(alert))
}

func (h *Handler) writeList(w http.ResponseWriter, alerts []*models.Alert) {
	responses := make([]alertResponse, 0, len(alerts))
	for _, alert := range alerts {
		responses = append(responses, toResponse(alert))
	}
	httputil.WriteJSON(w, http.StatusOK, responses)
}

func (h *Handler) callerID(ctx context.Context, w http.ResponseWriter) (id.UserID, bool) {
	rawUserID := middleware.GetUserID(ctx)
	if rawUserID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return id.UserID{}, false
	}
	callerID, err := id.ParseUserID(rawUserID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return id.UserID{}, false
	}
	return callerID, true
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		return
	}
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err,
	)
}
