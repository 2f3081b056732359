package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roomsync/reservation-system/internal/core/domain"
	"github.com/roomsync/reservation-system/internal/core/event"
	"github.com/roomsync/reservation-system/internal/core/ports"
)

const maxPageSize = 100

// ReservationService implements the reservation use cases with ownership
// enforcement: members operate on their own reservations, admins on all.
type ReservationService struct {
	repo   ports.ReservationRepository
	events *event.Dispatcher
	log    zerolog.Logger
}

func NewReservationService(repo ports.ReservationRepository, events *event.Dispatcher, log zerolog.Logger) *ReservationService {
	return &ReservationService{repo: repo, events: events, log: log}
}

var _ ports.ReservationService = (*ReservationService)(nil)

// Create persists a new pending reservation owned by the caller.
func (s *ReservationService) Create(ctx context.Context, in ports.CreateReservationInput) (*domain.Reservation, error) {
	now := time.Now().UTC()
	r := &domain.Reservation{
		ID:        uuid.NewString(),
		ClientID:  in.ClientID,
		RoomID:    in.RoomID,
		GuestName: in.GuestName,
		Starts:    in.Starts,
		Ends:      in.Ends,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.events.Record(domain.NewEvent(r.ID, domain.EventReservationCreated, map[string]any{
		"client_id": r.ClientID,
		"room_id":   r.RoomID,
	}))

	if err := s.repo.Create(ctx, r); err != nil {
		s.events.DiscardForAggregate(r.ID)
		return nil, err
	}

	s.log.Info().Str("reservation_id", r.ID).Str("client_id", r.ClientID).Msg("reservation created")
	return r, nil
}

// Get retrieves one reservation, scoped to the caller unless they are admin.
func (s *ReservationService) Get(ctx context.Context, id string, caller ports.Claims) (*domain.Reservation, error) {
	return s.repo.FindByID(ctx, id, scopeFor(caller))
}

// List returns a page of reservations. Non-admin callers are always scoped to
// their own client id regardless of the requested filter.
func (s *ReservationService) List(ctx context.Context, filter ports.ListReservationsFilter, caller ports.Claims) ([]*domain.Reservation, int64, error) {
	if caller.Role != domain.RoleAdmin {
		filter.ClientID = caller.UserID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	return s.repo.List(ctx, filter)
}

// Confirm moves a reservation from pending to confirmed.
func (s *ReservationService) Confirm(ctx context.Context, id string, caller ports.Claims) (*domain.Reservation, error) {
	return s.transition(ctx, id, caller, domain.StatusConfirmed)
}

// Cancel cancels a reservation if its status allows it.
func (s *ReservationService) Cancel(ctx context.Context, id string, caller ports.Claims) error {
	_, err := s.transition(ctx, id, caller, domain.StatusCancelled)
	return err
}

func (s *ReservationService) transition(ctx context.Context, id string, caller ports.Claims, next domain.ReservationStatus) (*domain.Reservation, error) {
	r, err := s.repo.FindByID(ctx, id, scopeFor(caller))
	if err != nil {
		return nil, err
	}

	if !r.Status.CanTransitionTo(next) {
		return nil, domain.ErrInvalidTransition
	}

	s.events.Record(domain.NewEvent(r.ID, domain.EventReservationChanged, map[string]any{
		"from": string(r.Status),
		"to":   string(next),
	}))

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		s.events.DiscardForAggregate(r.ID)
		return nil, err
	}

	r.Status = next
	r.UpdatedAt = time.Now().UTC()
	s.log.Info().Str("reservation_id", id).Str("status", string(next)).Msg("reservation status changed")
	return r, nil
}

// scopeFor returns the client filter applied to repository queries: empty for
// admins (no filter), the caller's own id otherwise.
func scopeFor(caller ports.Claims) string {
	if caller.Role == domain.RoleAdmin {
		return ""
	}
	return caller.UserID
}
