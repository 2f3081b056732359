package ports

import (
	"context"

	"github.com/roomsync/reservation-system/internal/core/domain"
)

// UserRepository defines the persistence operations the auth core depends on.
// Implementations map storage-level failures (missing document, unique index
// violation) to the corresponding domain errors.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// ExistsByEmail is checked before insert so a duplicate registration is
	// rejected as domain.ErrDuplicateEmail instead of surfacing as a storage
	// constraint violation.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Save inserts the user or updates an existing record by id.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	DeleteOne(ctx context.Context, id string) error
}
