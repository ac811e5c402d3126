// Package models defines the field update board: posts written by
// volunteers and the comments under them.
package models

import (
	"time"

	id "lifeline/pkg/domain"
)

// Post is a situation update written by a volunteer from the field.
type Post struct {
	ID         id.PostID
	AuthorID   id.UserID
	AuthorName string
	Title      string
	Body       string
	CreatedAt  time.Time
}

// Comment is a reply under a post. Any authenticated user may comment.
type Comment struct {
	ID         id.CommentID
	PostID     id.PostID
	AuthorID   id.UserID
	AuthorName string
	Body       string
	CreatedAt  time.Time
}
