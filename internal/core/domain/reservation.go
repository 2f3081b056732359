package domain

import "time"

// ReservationStatus represents the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCheckedIn ReservationStatus = "checked_in"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn: {StatusCompleted},
}

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Reservation is the booking aggregate root. ClientID is the owning user's id
// and scopes all non-admin access.
type Reservation struct {
	ID        string            `json:"id"`
	ClientID  string            `json:"client_id"`
	RoomID    string            `json:"room_id"`
	GuestName string            `json:"guest_name"`
	Starts    time.Time         `json:"starts"`
	Ends      time.Time         `json:"ends"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
