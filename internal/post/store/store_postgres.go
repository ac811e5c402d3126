package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"lifeline/internal/post/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

// PostgresStore persists the field update board. Comments reference posts
// with ON DELETE CASCADE, so dropping a post drops its thread in one
// statement.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const foreignKeyViolation = "23503"

func (s *PostgresStore) CreatePost(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, author_id, author_name, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(post.ID),
		uuid.UUID(post.AuthorID),
		post.AuthorName,
		post.Title,
		post.Body,
		post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindPost(ctx context.Context, postID id.PostID) (*models.Post, error) {
	query := `
		SELECT id, author_id, author_name, title, body, created_at
		FROM posts WHERE id = $1
	`
	post, err := scanPost(s.db.QueryRowContext(ctx, query, uuid.UUID(postID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *PostgresStore) ListPosts(ctx context.Context) ([]*models.Post, error) {
	query := `
		SELECT id, author_id, author_name, title, body, created_at
		FROM posts ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

func (s *PostgresStore) DeletePost(ctx context.Context, postID id.PostID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, uuid.UUID(postID))
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, author_id, author_name, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(comment.ID),
		uuid.UUID(comment.PostID),
		uuid.UUID(comment.AuthorID),
		comment.AuthorName,
		comment.Body,
		comment.CreatedAt,
	)
	if err != nil {
		// A broken post reference means the post is gone, not that the
		// write infrastructure failed.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindComment(ctx context.Context, commentID id.CommentID) (*models.Comment, error) {
	query := `
		SELECT id, post_id, author_id, author_name, body, created_at
		FROM comments WHERE id = $1
	`
	comment, err := scanComment(s.db.QueryRowContext(ctx, query, uuid.UUID(commentID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (s *PostgresStore) ListComments(ctx context.Context, postID id.PostID) ([]*models.Comment, error) {
	if _, err := s.FindPost(ctx, postID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, post_id, author_id, author_name, body, created_at
		FROM comments WHERE post_id = $1 ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(postID))
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}

func (s *PostgresStore) DeleteComment(ctx context.Context, commentID id.CommentID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, uuid.UUID(commentID))
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var postID, authorID uuid.UUID
	err := row.Scan(&postID, &authorID, &post.AuthorName, &post.Title, &post.Body, &post.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	post.ID = id.PostID(postID)
	post.AuthorID = id.UserID(authorID)
	return &post, nil
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var comment models.Comment
	var commentID, postID, authorID uuid.UUID
	err := row.Scan(&commentID, &postID, &authorID, &comment.AuthorName, &comment.Body, &comment.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	comment.ID = id.CommentID(commentID)
	comment.PostID = id.PostID(postID)
	comment.AuthorID = id.UserID(authorID)
	return &comment, nil
}
