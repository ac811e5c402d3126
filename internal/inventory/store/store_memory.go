package store

import (
	"context"
	"sync"
	"time"

	"lifeline/internal/inventory/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

// InMemoryStore keeps the ledger in a map guarded by a RWMutex. It favors
// clarity over performance and backs unit tests and local development.
type InMemoryStore struct {
	mu      sync.RWMutex
	samples map[id.SampleID]*models.Sample
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{samples: make(map[id.SampleID]*models.Sample)}
}

func (s *InMemoryStore) Create(_ context.Context, sample *models.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.samples {
		if existing.BloodType == sample.BloodType {
			return sentinel.ErrConflict
		}
	}
	copied := *sample
	s.samples[sample.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, sampleID id.SampleID) (*models.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sample, ok := s.samples[sampleID]; ok {
		copied := *sample
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByType(_ context.Context, bloodType id.BloodType) (*models.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sample := range s.samples {
		if sample.BloodType == bloodType {
			copied := *sample
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	samples := make([]*models.Sample, 0, len(s.samples))
	for _, sample := range s.samples {
		copied := *sample
		samples = append(samples, &copied)
	}
	return samples, nil
}

func (s *InMemoryStore) SetUnits(_ context.Context, sampleID id.SampleID, units int) (*models.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sample, ok := s.samples[sampleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	sample.Units = units
	sample.UpdatedAt = time.Now().UTC()
	copied := *sample
	return &copied, nil
}

func (s *InMemoryStore) Delete(_ context.Context, sampleID id.SampleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.samples[sampleID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.samples, sampleID)
	return nil
}
