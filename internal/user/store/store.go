// Package store provides persistence for user accounts.
package store

import (
	"context"

	"lifeline/internal/user/models"
	id "lifeline/pkg/domain"
)

// Store is pure persistence for user accounts. Uniqueness of email is the
// store's concern; every other rule lives in the service.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListAll(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID id.UserID) error
}
