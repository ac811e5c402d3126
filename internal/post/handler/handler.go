// Package handler exposes the field update board over HTTP.
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
	"lifeline/internal/post/models"
	"lifeline/internal/post/service"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/httputil"
)

// Service defines the board operations the handler exposes.
type Service interface {
	CreatePost(ctx context.Context, callerID id.UserID, title, body string) (*models.Post, error)
	ListPosts(ctx context.Context) ([]*models.Post, error)
	GetPost(ctx context.Context, postID id.PostID) (*models.Post, []*models.Comment, error)
	DeletePost(ctx context.Context, callerID id.UserID, callerIsAdmin bool, postID id.PostID) error
	AddComment(ctx context.Context, callerID id.UserID, postID id.PostID, body string) (*models.Comment, error)
	DeleteComment(ctx context.Context, callerID id.UserID, callerIsAdmin bool, commentID id.CommentID) error
}

var _ Service = (*service.Service)(nil)

type Handler struct {
	logger    *slog.Logger
	posts     Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

func New(posts Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		posts:     posts,
		metrics:   m,
		validator: validator,
	}
}

// Register mounts the board routes.
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
	router.Get("/{postID}", h.handleGet)
	router.Delete("/{postID}", h.handleDelete)
	router.Post("/{postID}/comments", h.handleComment)
	router.Delete("/comments/{commentID}", h.handleDeleteComment)

	r.Mount("/posts", router)
}

type createPostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type commentRequest struct {
	Body string `json:"body"`
}

type postResponse struct {
	ID         string `json:"id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
}

type commentResponse struct {
	ID         string `json:"id"`
	PostID     string `json:"post_id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
}

type postDetailResponse struct {
	postResponse
	Comments []commentResponse `json:"comments"`
}

func toPostResponse(post *models.Post) postResponse {
	return postResponse{
		ID:         post.ID.String(),
		AuthorID:   post.AuthorID.String(),
		AuthorName: post.AuthorName,
		Title:      post.Title,
		Body:       post.Body,
		CreatedAt:  post.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toCommentResponse(comment *models.Comment) commentResponse {
	return commentResponse{
		ID:         comment.ID.String(),
		PostID:     comment.PostID.String(),
		AuthorID:   comment.AuthorID.String(),
		AuthorName: comment.AuthorName,
		Body:       comment.Body,
		CreatedAt:  comment.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, ok := h.callerID(ctx, w)
	if !ok {
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	post, err := h.posts.CreatePost(ctx, callerID, req.Title, req.Body)
	if err != nil {
		h.logError(ctx, "failed to create post", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toPostResponse(post))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	posts, err := h.posts.ListPosts(ctx)
	if err != nil {
		h.logError(ctx, "failed to list posts", err)
		httputil.WriteError(w, err)
		return
	}

	responses := make([]postResponse, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, toPostResponse(post))
	}
	httputil.WriteJSON(w, http.StatusOK, responses)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID, err := id.ParsePostID(chi.URLParam(r, "postID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid post id"))
		return
	}

	post, comments, err := h.posts.GetPost(ctx, postID)
	if err != nil {
		h.logError(ctx, "failed to load post", err)
		httputil.WriteError(w, err)
		return
	}

	detail := postDetailResponse{
		postResponse: toPostResponse(post),
		Comments:     make([]commentResponse, 0, len(comments)),
	}
	for _, comment := range comments {
		detail.Comments = append(detail.Comments, toCommentResponse(comment))
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, ok := h.callerID(ctx, w)
	if !ok {
		return
	}

	postID, err := id.ParsePostID(chi.URLParam(r, "postID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid post id"))
		return
	}

	if err := h.posts.DeletePost(ctx, callerID, middleware.IsAdmin(ctx), postID); err != nil {
		h.logError(ctx, "failed to delete post", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, ok := h.callerID(ctx, w)
	if !ok {
		return
	}

	postID, err := id.ParsePostID(chi.URLParam(r, "postID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid post id"))
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	comment, err := h.posts.AddComment(ctx, callerID, postID, req.Body)
	if err != nil {
		h.logError(ctx, "failed to add comment", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toCommentResponse(comment))
}

func (h *Handler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, ok := h.callerID(ctx, w)
	if !ok {
		return
	}

	commentID, err := id.ParseCommentID(chi.URLParam(r, "commentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid comment id"))
		return
	}

	if err := h.posts.DeleteComment(ctx, callerID, middleware.IsAdmin(ctx), commentID); err != nil {
		h.logError(ctx, "failed to delete comment", err)
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
