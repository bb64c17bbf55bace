// Package repository declares the storage contracts used by the services.
// Concrete backends live in the sqlite and mongo subpackages.
package repository

import (
	"context"

	"github.com/sakif/commentdesk/internal/model"
)

// UserRepository persists User records keyed by their external (Instagram) id.
//
// Implementations must return an error wrapping apperror.ErrNotFound on a
// lookup miss and apperror.ErrConflict when Create hits an existing
// ExternalID.
type UserRepository interface {
	// Create inserts a new user and fills in ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, user *model.User) error
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)
	// Update persists the mutable fields of an existing user and refreshes
	// UpdatedAt. ExternalID, ID and CreatedAt are never changed.
	Update(ctx context.Context, user *model.User) error
	Close() error
}
