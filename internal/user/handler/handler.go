// Package handler exposes account registration, login, and profile routes.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lifeline/internal/platform/metrics"
	"lifeline/internal/platform/middleware"
	"lifeline/internal/user/service"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/httputil"
)

// Handler handles account endpoints. Register and login are the only
// unauthenticated routes in the system. The account service surface is wide
// and the handler is its only caller, so it depends on the concrete service.
type Handler struct {
	logger    *slog.Logger
	users     *service.Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

func New(users *service.Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		users:     users,
		metrics:   m,
		validator: validator,
	}
}

// Register mounts the account routes: a public router for register/login
// and an authenticated router for profile operations.
func (h *Handler) Register(r chi.Router) {
	public := chi.NewRouter()
	public.Use(middleware.Recovery(h.logger))
	public.Use(middleware.RequestID)
	public.Use(middleware.Logger(h.logger))
	public.Use(middleware.Timeout(30 * time.Second))
	public.Use(middleware.ContentTypeJSON)
	public.Use(middleware.Latency(h.metrics))
	public.Post("/register", h.handleRegister)
	public.Post("/login", h.handleLogin)

	authed := chi.NewRouter()
	authed.Use(middleware.Recovery(h.logger))
	authed.Use(middleware.RequestID)
	authed.Use(middleware.Logger(h.logger))
	authed.Use(middleware.Timeout(30 * time.Second))
	authed.Use(middleware.ContentTypeJSON)
	authed.Use(middleware.Latency(h.metrics))
	authed.Use(middleware.RequireAuth(h.validator, h.logger))
	authed.Get("/", h.handleListAll)
	authed.Get("/me", h.handleGetSelf)
	authed.Put("/me", h.handleUpdateSelf)
	authed.Get("/{userID}", h.handleGet)
	authed.Delete("/{userID}", h.handleDelete)

	r.Mount("/auth", public)
	r.Mount("/users", authed)
}

type registerRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	DOB        string `json:"dob"`
	BloodGroup string `json:"blood_group"`
	Role       string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	DOB           string `json:"dob"`
	BloodGroup    string `json:"blood_group"`
	BloodSampleID string `json:"blood_sample_id,omitempty"`
	Role          string `json:"role"`
	Active        bool   `json:"active"`
	Age           *int   `json:"age,omitempty"`
}

func toResponse(profile *service.Profile) userResponse {
	resp := userResponse{
		ID:         profile.ID.String(),
		Email:      profile.Email,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		DOB:        profile.DOB,
		BloodGroup: string(profile.BloodGroup),
		Role:       string(profile.Role),
		Active:     profile.Active,
		Age:        profile.Age,
	}
	if !profile.BloodSampleID.IsNil() {
		resp.BloodSampleID = profile.BloodSampleID.String()
	}
	return resp
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	user, err := h.users.Register(ctx, service.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		DOB:        req.DOB,
		BloodGroup: req.BloodGroup,
		Role:       req.Role,
	})
	if err != nil {
		h.logError(ctx, "failed to register user", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(&service.Profile{User: *user}))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logError(ctx, "failed login", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(result.ExpiresIn.Seconds()),
	})
}

func (h *Handler) handleGetSelf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, ok := h.callerID(ctx, w)
	if !ok {
		return
	}

	profile, err := h.users.Get(ctx, callerID, middleware.IsAdmin(ctx), callerID)
	if err != nil {
		h.logError(ctx, "failed to load profile", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(profile))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, ok := h.callerID(ctx, w)
	if !ok {
		return
	}

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	profile, err := h.users.Get(ctx, callerID, middleware.IsAdmin(ctx), userID)
	if err != nil {
		h.logError(ctx, "failed to load profile", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(profile))
}

func (h *Handler) handleUpdateSelf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, ok := h.callerID(ctx, w)
	if !ok {
		return
	}

	var req struct {
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		DOB        string `json:"dob"`
		BloodGroup string `json:"blood_group"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	profile, err := h.users.Update(ctx, callerID, service.UpdateInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		DOB:        req.DOB,
		BloodGroup: req.BloodGroup,
	})
	if err != nil {
		h.logError(ctx, "failed to update profile", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(profile))
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profiles, err := h.users.ListAll(ctx, middleware.IsAdmin(ctx))
	if err != nil {
		h.logError(ctx, "failed to list users", err)
		httputil.WriteError(w, err)
		return
	}

	responses := make([]userResponse, 0, len(profiles))
	for _, profile := range profiles {
		responses = append(responses, toResponse(profile))
	}
	httputil.WriteJSON(w, http.StatusOK, responses)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, ok := h.callerID(ctx, w)
	if !ok {
		return
	}

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	if err := h.users.Delete(ctx, callerID, middleware.IsAdmin(ctx), userID); err != nil {
		h.logError(ctx, "failed to delete user", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) callerID(ctx context.Context, w http.ResponseWriter) (id.UserID, bool) {
	rawUserID := middleware.GetUserID(ctx)
	if rawUserID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return id.UserID{}, false
	}
	callerID, err := id.ParseUserID(rawUserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "invalid user id in context",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
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
