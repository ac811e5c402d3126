package store

import (
	"context"
	"strings"
	"sync"

	"lifeline/internal/user/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

// InMemoryStore keeps users in maps guarded by a mutex. Emails are indexed
// case-insensitively, matching the citext column of the Postgres store.
type InMemoryStore struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byEmail map[string]id.UserID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		users:   make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *InMemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := emailKey(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return sentinel.ErrConflict
	}
	copied := *user
	s.users[user.ID] = &copied
	s.byEmail[key] = user.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[userID]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if userID, ok := s.byEmail[emailKey(email)]; ok {
		copied := *s.users[userID]
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		copied := *user
		users = append(users, &copied)
	}
	return users, nil
}

func (s *InMemoryStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if emailKey(existing.Email) != emailKey(user.Email) {
		return sentinel.ErrInvalidState
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byEmail, emailKey(user.Email))
	delete(s.users, userID)
	return nil
}
