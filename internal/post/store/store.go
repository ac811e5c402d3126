// Package store provides persistence for the field update board.
package store

import (
	"context"

	"lifeline/internal/post/models"
	id "lifeline/pkg/domain"
)

// Store is pure persistence for posts and their comments. Deleting a post
// drops its comments with it.
type Store interface {
	CreatePost(ctx context.Context, post *models.Post) error
	FindPost(ctx context.Context, postID id.PostID) (*models.Post, error)
	ListPosts(ctx context.Context) ([]*models.Post, error)
	DeletePost(ctx context.Context, postID id.PostID) error

	CreateComment(ctx context.Context, comment *models.Comment) error
	FindComment(ctx context.Context, commentID id.CommentID) (*models.Comment, error)
	ListComments(ctx context.Context, postID id.PostID) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, commentID id.CommentID) error
}
