// Package handler exposes the blood sample ledger over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lifeline/internal/inventory/models"
	"lifeline/internal/platform/metrics"
	"lifeline/internal/platform/middleware"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/httputil"
)

// Service defines the ledger operations the handler exposes.
type Service interface {
	Create(ctx context.Context, bloodType id.BloodType, units int) (*models.Sample, error)
	FindByID(ctx context.Context, sampleID id.SampleID) (*models.Sample, error)
	List(ctx context.Context) ([]*models.Sample, error)
	SetUnits(ctx context.Context, sampleID id.SampleID, units int) (*models.Sample, error)
	Delete(ctx context.Context, sampleID id.SampleID) error
}

// Handler handles blood sample endpoints. Reads are open to any
// authenticated caller; mutations are admin only.
type Handler struct {
	logger    *slog.Logger
	samples   Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

func New(samples Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		samples:   samples,
		metrics:   m,
		validator: validator,
	}
}

// Register mounts the sample routes with the shared middleware chain.
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
	router.Get("/", h.handleList)
	router.Get("/{sampleID}", h.handleGet)
	router.Put("/{sampleID}/units", h.handleSetUnits)
	router.Delete("/{sampleID}", h.handleDelete)

	r.Mount("/samples", router)
}

type createSampleRequest struct {
	BloodType string `json:"blood_type"`
	Units     int    `json:"units"`
}

type setUnitsRequest struct {
	Units int `json:"units"`
}

type sampleResponse struct {
	ID        string `json:"id"`
	BloodType string `json:"blood_type"`
	Units     int    `json:"units"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toResponse(sample *models.Sample) sampleResponse {
	return sampleResponse{
		ID:        sample.ID.String(),
		BloodType: string(sample.BloodType),
		Units:     sample.Units,
		CreatedAt: sample.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: sample.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) requireAdmin(ctx context.Context, w http.ResponseWriter) bool {
	if !middleware.IsAdmin(ctx) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "only admins can modify inventory"))
		return false
	}
	return true
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireAdmin(ctx, w) {
		return
	}

	var req createSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	bloodType, err := id.ParseBloodType(req.BloodType)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sample, err := h.samples.Create(ctx, bloodType, req.Units)
	if err != nil {
		h.logError(ctx, "failed to create blood sample", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(sample))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	samples, err := h.samples.List(ctx)
	if err != nil {
		h.logError(ctx, "failed to list blood samples", err)
		httputil.WriteError(w, err)
		return
	}

	responses := make([]sampleResponse, 0, len(samples))
	for _, sample := range samples {
		responses = append(responses, toResponse(sample))
	}
	httputil.WriteJSON(w, http.StatusOK, responses)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sampleID, err := id.ParseSampleID(chi.URLParam(r, "sampleID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid sample id"))
		return
	}

	sample, err := h.samples.FindByID(ctx, sampleID)
	if err != nil {
		h.logError(ctx, "failed to load blood sample", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(sample))
}

func (h *Handler) handleSetUnits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireAdmin(ctx, w) {
		return
	}

	sampleID, err := id.ParseSampleID(chi.URLParam(r, "sampleID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid sample id"))
		return
	}

	var req setUnitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	sample, err := h.samples.SetUnits(ctx, sampleID, req.Units)
	if err != nil {
		h.logError(ctx, "failed to set sample units", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(sample))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireAdmin(ctx, w) {
		return
	}

	sampleID, err := id.ParseSampleID(chi.URLParam(r, "sampleID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid sample id"))
		return
	}

	if err := h.samples.Delete(ctx, sampleID); err != nil {
		h.logError(ctx, "failed to delete blood sample", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
