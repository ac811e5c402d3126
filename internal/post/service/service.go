// Package service implements the field update board: volunteer posts and
// the comments under them.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"lifeline/internal/post/models"
	"lifeline/internal/post/store"
	usermodels "lifeline/internal/user/models"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/sentinel"
)

// UserDirectory resolves accounts so posts and comments carry the author's
// name, not just an id.
type UserDirectory interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
}

type Service struct {
	posts  store.Store
	users  UserDirectory
	logger *slog.Logger
	clock  func() time.Time
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

func New(posts store.Store, users UserDirectory, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		posts:  posts,
		users:  users,
		logger: logger,
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreatePost publishes a situation update. Only volunteers post; donors
// comment, admins moderate.
func (s *Service) CreatePost(ctx context.Context, callerID id.UserID, title, body string) (*models.Post, error) {
	if callerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "post title and body are required")
	}

	author, err := s.resolveAuthor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if author.Role != usermodels.RoleVolunteer {
		return nil, dErrors.New(dErrors.CodeForbidden, "only volunteers can post field updates")
	}

	post := &models.Post{
		ID:         id.PostID(uuid.New()),
		AuthorID:   author.ID,
		AuthorName: author.FullName(),
		Title:      strings.TrimSpace(title),
		Body:       strings.TrimSpace(body),
		CreatedAt:  s.clock().UTC(),
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create post")
	}
	return post, nil
}

// ListPosts returns the board, newest first.
func (s *Service) ListPosts(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list posts")
	}
	return posts, nil
}

// GetPost returns one post with its comments in posting order.
func (s *Service) GetPost(ctx context.Context, postID id.PostID) (*models.Post, []*models.Comment, error) {
	post, err := s.posts.FindPost(ctx, postID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "post not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load post")
	}
	comments, err := s.posts.ListComments(ctx, postID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load comments")
	}
	return post, comments, nil
}

// DeletePost removes a post and its comments. The author or an admin may
// delete.
func (s *Service) DeletePost(ctx context.Context, callerID id.UserID, callerIsAdmin bool, postID id.PostID) error {
	if callerID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}

	post, err := s.posts.FindPost(ctx, postID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "post not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load post")
	}
	if !callerIsAdmin && post.AuthorID != callerID {
		return dErrors.New(dErrors.CodeForbidden, "only the author or an admin can delete a post")
	}

	if err := s.posts.DeletePost(ctx, postID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "post not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete post")
	}
	return nil
}

// AddComment replies to a post. Any authenticated user may comment.
func (s *Service) AddComment(ctx context.Context, callerID id.UserID, postID id.PostID, body string) (*models.Comment, error) {
	if callerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "comment body is required")
	}

	author, err := s.resolveAuthor(ctx, callerID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:         id.CommentID(uuid.New()),
		PostID:     postID,
		AuthorID:   author.ID,
		AuthorName: author.FullName(),
		Body:       strings.TrimSpace(body),
		CreatedAt:  s.clock().UTC(),
	}
	if err := s.posts.CreateComment(ctx, comment); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "post not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add comment")
	}
	return comment, nil
}

// DeleteComment removes a single comment. Allowed for the comment author
// and admins.
func (s *Service) DeleteComment(ctx context.Context, callerID id.UserID, callerIsAdmin bool, commentID id.CommentID) error {
	if callerID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}

	comment, err := s.posts.FindComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "comment not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load comment")
	}
	if comment.AuthorID != callerID && !callerIsAdmin {
		return dErrors.New(dErrors.CodeForbidden, "only the comment author or an admin can delete a comment")
	}

	if err := s.posts.DeleteComment(ctx, commentID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "comment not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete comment")
	}
	return nil
}

func (s *Service) resolveAuthor(ctx context.Context, callerID id.UserID) (*usermodels.User, error) {
	author, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve author")
	}
	return author, nil
}
