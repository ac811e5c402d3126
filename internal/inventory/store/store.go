package store

import (
	"context"

	"lifeline/internal/inventory/models"
	id "lifeline/pkg/domain"
)

// Store is pure persistence for inventory ledger entries. Uniqueness per
// blood type is enforced here (sentinel.ErrConflict); all other business
// rules live in the service.
type Store interface {
	Create(ctx context.Context, sample *models.Sample) error
	FindByID(ctx context.Context, sampleID id.SampleID) (*models.Sample, error)
	FindByType(ctx context.Context, bloodType id.BloodType) (*models.Sample, error)
	List(ctx context.Context) ([]*models.Sample, error)
	SetUnits(ctx context.Context, sampleID id.SampleID, units int) (*models.Sample, error)
	Delete(ctx context.Context, sampleID id.SampleID) error
}
