package store

import (
	"context"
	"sync"

	"lifeline/internal/approval/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

// InMemoryStore keeps approval requests in a map guarded by a mutex. The
// lock makes UpdateStatusIfPending check-and-set atomic, matching the
// conditional-update guarantee of the Postgres implementation.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[id.RequestID]*models.ApprovalRequest
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{requests: make(map[id.RequestID]*models.ApprovalRequest)}
}

func (s *InMemoryStore) Create(_ context.Context, request *models.ApprovalRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *request
	s.requests[request.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, requestID id.RequestID) (*models.ApprovalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if request, ok := s.requests[requestID]; ok {
		copied := *request
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListByRequesterAndType(_ context.Context, requesterID id.UserID, requestType models.RequestType) ([]*models.ApprovalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*models.ApprovalRequest
	for _, request := range s.requests {
		if request.RequesterID == requesterID && request.Type == requestType {
			copied := *request
			matched = append(matched, &copied)
		}
	}
	return matched, nil
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]*models.ApprovalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	requests := make([]*models.ApprovalRequest, 0, len(s.requests))
	for _, request := range s.requests {
		copied := *request
		requests = append(requests, &copied)
	}
	return requests, nil
}

func (s *InMemoryStore) UpdateStatusIfPending(_ context.Context, requestID id.RequestID, status models.Status, reviewedBy id.UserID) (*models.ApprovalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if request.Status != models.StatusPending {
		return nil, ErrAlreadyReviewed
	}
	request.Status = status
	reviewer := reviewedBy
	request.ReviewedBy = &reviewer
	copied := *request
	return &copied, nil
}

func (s *InMemoryStore) ResetToPending(_ context.Context, requestID id.RequestID) (*models.ApprovalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	request.Status = models.StatusPending
	request.ReviewedBy = nil
	copied := *request
	return &copied, nil
}

func (s *InMemoryStore) Delete(_ context.Context, requestID id.RequestID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[requestID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.requests, requestID)
	return nil
}
