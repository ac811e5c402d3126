// Package handler exposes the approval workflow over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lifeline/internal/approval/models"
	"lifeline/internal/approval/service"
	"lifeline/internal/platform/metrics"
	"lifeline/internal/platform/middleware"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/httputil"
)

// Service defines the approval workflow operations the handler exposes.
type Service interface {
	Create(ctx context.Context, identity service.Identity, requestType string, units int, disease string) (*models.ApprovalRequest, error)
	Review(ctx context.Context, identity service.Identity, requestID id.RequestID, decision string) (*models.ApprovalRequest, error)
	ListByRequester(ctx context.Context, identity service.Identity, requestType string) ([]*models.ApprovalRequest, error)
	ListAll(ctx context.Context, identity service.Identity) ([]*models.ReviewedRequest, error)
	Delete(ctx context.Context, identity service.Identity, requestID id.RequestID) error
}

// Handler handles approval request endpoints.
type Handler struct {
	logger    *slog.Logger
	approvals Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

func New(approvals Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		approvals: approvals,
		metrics:   m,
		validator: validator,
	}
}

// Register mounts the approval routes. Every route requires a valid bearer
// token; role checks stay in the service.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(h.metrics))
	router.Use(middleware.RequireAuth(h.validator, h.logger))

	router.Post("/", h.handleCreate)
	router.Get("/", h.handleListOwn)
	router.Get("/all", h.handleListAll)
	router.Post("/{requestID}/review", h.handleReview)
	router.Delete("/{requestID}", h.handleDelete)

	r.Mount("/requests", router)
}

type createRequest struct {
	Type    string `json:"type"`
	Units   int    `json:"units"`
	Disease string `json:"disease,omitempty"`
}

type reviewRequest struct {
	Decision string `json:"decision"`
}

type approvalResponse struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	RequesterID   string `json:"requester_id"`
	RequesterName string `json:"requester_name"`
	BloodGroup    string `json:"blood_group"`
	BloodSampleID string `json:"blood_sample_id"`
	DOB           string `json:"dob"`
	Units         int    `json:"units"`
	Disease       string `json:"disease,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	ReviewedBy    string `json:"reviewed_by,omitempty"`
	Age           *int   `json:"age,omitempty"`
}

func toResponse(request *models.ApprovalRequest, age *int) approvalResponse {
	resp := approvalResponse{
		ID:            request.ID.String(),
		Type:          string(request.Type),
		RequesterID:   request.RequesterID.String(),
		RequesterName: request.RequesterName,
		BloodGroup:    string(request.BloodGroup),
		BloodSampleID: request.BloodSampleID.String(),
		DOB:           request.DOB,
		Units:         request.Units,
		Disease:       request.Disease,
		Status:        string(request.Status),
		CreatedAt:     request.CreatedAt.UTC().Format(time.RFC3339),
		Age:           age,
	}
	if request.ReviewedBy != nil {
		resp.ReviewedBy = request.ReviewedBy.String()
	}
	return resp
}

// identity rebuilds the caller identity the auth middleware stored in the
// context. An unparseable user id means the token subject was mangled, which
// reads as an internal fault rather than a caller error.
func (h *Handler) identity(ctx context.Context, w http.ResponseWriter) (service.Identity, bool) {
	rawUserID := middleware.GetUserID(ctx)
	if rawUserID == "" {
		h.logger.ErrorContext(ctx, "user id missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return service.Identity{}, false
	}
	userID, err := id.ParseUserID(rawUserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "invalid user id in context",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return service.Identity{}, false
	}
	return service.Identity{UserID: userID, IsAdmin: middleware.IsAdmin(ctx)}, true
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.identity(ctx, w)
	if !ok {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	request, err := h.approvals.Create(ctx, identity, req.Type, req.Units, req.Disease)
	if err != nil {
		h.logError(ctx, "failed to create approval request", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(request, nil))
}

func (h *Handler) handleListOwn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.identity(ctx, w)
	if !ok {
		return
	}

	requests, err := h.approvals.ListByRequester(ctx, identity, r.URL.Query().Get("type"))
	if err != nil {
		h.logError(ctx, "failed to list approval requests", err)
		httputil.WriteError(w, err)
		return
	}

	responses := make([]approvalResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, toResponse(request, nil))
	}
	httputil.WriteJSON(w, http.StatusOK, responses)
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.identity(ctx, w)
	if !ok {
		return
	}

	requests, err := h.approvals.ListAll(ctx, identity)
	if err != nil {
		h.logError(ctx, "failed to list all approval requests", err)
		httputil.WriteError(w, err)
		return
	}

	responses := make([]approvalResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, toResponse(&request.ApprovalRequest, request.Age))
	}
	httputil.WriteJSON(w, http.StatusOK, responses)
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.identity(ctx, w)
	if !ok {
		return
	}

	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request id"))
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	request, err := h.approvals.Review(ctx, identity, requestID, req.Decision)
	if err != nil {
		h.logError(ctx, "failed to review approval request", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(request, nil))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.identity(ctx, w)
	if !ok {
		return
	}

	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request id"))
		return
	}

	if err := h.approvals.Delete(ctx, identity, requestID); err != nil {
		h.logError(ctx, "failed to delete approval request", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) || dErrors.HasCode(err, dErrors.CodePartialFailure) {
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
