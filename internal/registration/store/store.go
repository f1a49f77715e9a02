// Package store persists registration records. Stores are pure I/O: the
// intake decision table lives in the service layer, while uniqueness and the
// capacity ceiling are enforced here atomically so concurrent submissions
// cannot race past a check-then-write gap.
package store

import (
	"context"

	"trilha/internal/registration/models"
)

// Store is the gateway to the single logical table of registrations.
//
// Create and Update return sentinel.ErrDuplicateEmail,
// sentinel.ErrDuplicatePhone or sentinel.ErrCapacityReached (Create only)
// when the write would violate an invariant. FindByID, Update and Delete
// return sentinel.ErrNotFound for a missing id.
type Store interface {
	Create(ctx context.Context, reg *models.Registration) error
	FindConflict(ctx context.Context, email, whatsapp string, excludeID int64) (*models.Registration, error)
	FindByID(ctx context.Context, id int64) (*models.Registration, error)
	List(ctx context.Context) ([]*models.Registration, error)
	Update(ctx context.Context, reg *models.Registration) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}
