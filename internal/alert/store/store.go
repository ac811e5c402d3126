// Package store provides persistence for emergency alerts.
package store

import (
	"context"

	"lifeline/internal/alert/models"
	id "lifeline/pkg/domain"
)

// Store is pure persistence for alerts.
type Store interface {
	Create(ctx context.Context, alert *models.Alert) error
	FindByID(ctx context.Context, alertID id.AlertID) (*models.Alert, error)
	Update(ctx context.Context, alert *models.Alert) error
	ListActive(ctx context.Context) ([]*models.Alert, error)
	ListAll(ctx context.Context) ([]*models.Alert, error)
	Deactivate(ctx context.Context, alertID id.AlertID) (*models.Alert, error)
}
