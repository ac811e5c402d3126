package store

import (
	"context"
	"sort"
	"sync"

	"lifeline/internal/alert/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

// InMemoryStore keeps alerts in a map guarded by a mutex.
type InMemoryStore struct {
	mu     sync.RWMutex
	alerts map[id.AlertID]*models.Alert
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{alerts: make(map[id.AlertID]*models.Alert)}
}

func (s *InMemoryStore) Create(_ context.Context, alert *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *alert
	s.alerts[alert.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, alertID id.AlertID) (*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if alert, ok := s.alerts[alertID]; ok {
		copied := *alert
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Update(_ context.Context, alert *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[alert.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *alert
	s.alerts[alert.ID] = &copied
	return nil
}

func (s *InMemoryStore) ListActive(ctx context.Context) ([]*models.Alert, error) {
	return s.list(func(alert *models.Alert) bool { return alert.Active })
}

func (s *InMemoryStore) ListAll(ctx context.Context) ([]*models.Alert, error) {
	return s.list(func(*models.Alert) bool { return true })
}

func (s *InMemoryStore) list(keep func(*models.Alert) bool) ([]*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var alerts []*models.Alert
	for _, alert := range s.alerts {
		if keep(alert) {
			copied := *alert
			alerts = append(alerts, &copied)
		}
	}
	// Newest first, the order the alert feed shows them.
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].CreatedAt.After(alerts[j].CreatedAt) })
	return alerts, nil
}

func (s *InMemoryStore) Deactivate(_ context.Context, alertID id.AlertID) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	alert, ok := s.alerts[alertID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	alert.Active = false
	copied := *alert
	return &copied, nil
}
