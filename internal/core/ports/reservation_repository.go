package ports

import (
	"context"

	"github.com/roomsync/reservation-system/internal/core/domain"
)

// ListReservationsFilter carries all query parameters for listing reservations.
// ClientID is always enforced by the service layer (RBAC).
type ListReservationsFilter struct {
	ClientID string // empty = no filter (admin); non-empty = scoped to owner
	RoomID   string // optional: filter by room
	Status   string // optional: filter by reservation status
	Page     int    // 1-based
	Limit    int    // max rows per page (capped at 100 by service)
}

// ReservationRepository defines persistence operations for reservations.
type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	// FindByID retrieves a reservation. When clientID is non-empty the query
	// is additionally filtered by client_id (for RBAC).
	FindByID(ctx context.Context, id string, clientID string) (*domain.Reservation, error)
	// UpdateStatus persists a status transition.
	UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) error
	// List returns a page of reservations matching filter and the total count.
	List(ctx context.Context, filter ListReservationsFilter) ([]*domain.Reservation, int64, error)
}
