// Package service implements the inventory ledger: per-blood-type unit
// counts read by registration and mutated by approved donation reviews or
// direct inventory management.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"lifeline/internal/inventory/models"
	"lifeline/internal/inventory/store"
	"lifeline/internal/platform/metrics"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/sentinel"
)

type Service struct {
	samples store.Store
	metrics *metrics.Metrics
}

func New(samples store.Store, m *metrics.Metrics) *Service {
	return &Service{samples: samples, metrics: m}
}

// Create registers a new ledger entry for a blood type. Each type has at
// most one entry.
func (s *Service) Create(ctx context.Context, bloodType id.BloodType, units int) (*models.Sample, error) {
	if !bloodType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown blood type")
	}
	if units < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "units cannot be negative")
	}

	now := time.Now().UTC()
	sample := &models.Sample{
		ID:        id.SampleID(uuid.New()),
		BloodType: bloodType,
		Units:     units,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.samples.Create(ctx, sample); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "blood sample already exists for this type")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create blood sample")
	}
	return sample, nil
}

// FindByID looks up a ledger entry by its id.
func (s *Service) FindByID(ctx context.Context, sampleID id.SampleID) (*models.Sample, error) {
	sample, err := s.samples.FindByID(ctx, sampleID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "blood sample not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load blood sample")
	}
	return sample, nil
}

// FindByType looks up the ledger entry for a blood type.
func (s *Service) FindByType(ctx context.Context, bloodType id.BloodType) (*models.Sample, error) {
	if !bloodType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown blood type")
	}
	sample, err := s.samples.FindByType(ctx, bloodType)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "blood sample not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load blood sample")
	}
	return sample, nil
}

// List returns the full ledger.
func (s *Service) List(ctx context.Context) ([]*models.Sample, error) {
	samples, err := s.samples.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list blood samples")
	}
	return samples, nil
}

// SetUnits replaces the stored unit count wholesale. The review workflow
// relies on this being an absolute write so repeated ledger corrections
// converge; it is not an increment.
func (s *Service) SetUnits(ctx context.Context, sampleID id.SampleID, units int) (*models.Sample, error) {
	if units < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "units cannot be negative")
	}
	sample, err := s.samples.SetUnits(ctx, sampleID, units)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "blood sample not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update blood sample units")
	}
	if s.metrics != nil {
		s.metrics.InventoryWrites.Inc()
	}
	return sample, nil
}

// Delete removes a ledger entry.
func (s *Service) Delete(ctx context.Context, sampleID id.SampleID) error {
	if err := s.samples.Delete(ctx, sampleID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "blood sample not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete blood sample")
	}
	return nil
}
