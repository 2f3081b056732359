package ports

import (
	"context"
	"time"

	"github.com/roomsync/reservation-system/internal/core/domain"
)

// CreateReservationInput is the DTO passed from the transport layer.
type CreateReservationInput struct {
	ClientID  string
	RoomID    string
	GuestName string
	Starts    time.Time
	Ends      time.Time
}

// ReservationService exposes the reservation use cases. Every operation takes
// the caller's identity so ownership can be enforced: members see only their
// own reservations, admins see all.
type ReservationService interface {
	Create(ctx context.Context, in CreateReservationInput) (*domain.Reservation, error)
	Get(ctx context.Context, id string, caller Claims) (*domain.Reservation, error)
	List(ctx context.Context, filter ListReservationsFilter, caller Claims) ([]*domain.Reservation, int64, error)
	Confirm(ctx context.Context, id string, caller Claims) (*domain.Reservation, error)
	Cancel(ctx context.Context, id string, caller Claims) error
}
