package store

import (
	"context"
	"sort"
	"sync"

	"lifeline/internal/post/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

// InMemoryStore keeps posts and comments in maps guarded by one mutex.
type InMemoryStore struct {
	mu       sync.RWMutex
	posts    map[id.PostID]*models.Post
	comments map[id.PostID][]*models.Comment
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		posts:    make(map[id.PostID]*models.Post),
		comments: make(map[id.PostID][]*models.Comment),
	}
}

func (s *InMemoryStore) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *post
	s.posts[post.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindPost(_ context.Context, postID id.PostID) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if post, ok := s.posts[postID]; ok {
		copied := *post
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListPosts(_ context.Context) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	posts := make([]*models.Post, 0, len(s.posts))
	for _, post := range s.posts {
		copied := *post
		posts = append(posts, &copied)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (s *InMemoryStore) DeletePost(_ context.Context, postID id.PostID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.posts, postID)
	delete(s.comments, postID)
	return nil
}

func (s *InMemoryStore) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[comment.PostID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *comment
	s.comments[comment.PostID] = append(s.comments[comment.PostID], &copied)
	return nil
}

func (s *InMemoryStore) FindComment(_ context.Context, commentID id.CommentID) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, comments := range s.comments {
		for _, comment := range comments {
			if comment.ID == commentID {
				copied := *comment
				return &copied, nil
			}
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) DeleteComment(_ context.Context, commentID id.CommentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for postID, comments := range s.comments {
		for i, comment := range comments {
			if comment.ID == commentID {
				s.comments[postID] = append(comments[:i], comments[i+1:]...)
				return nil
			}
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemoryStore) ListComments(_ context.Context, postID id.PostID) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.posts[postID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	comments := make([]*models.Comment, 0, len(s.comments[postID]))
	for _, comment := range s.comments[postID] {
		copied := *comment
		comments = append(comments, &copied)
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}
