package domain

import "time"

// Event names published by the core use cases.
const (
	EventUserCreated        = "user.created"
	EventUserAdminCreated   = "user.admin_created"
	EventUserPasswordReset  = "user.password_reset"
	EventReservationCreated = "reservation.created"
	EventReservationChanged = "reservation.status_changed"
)

// Event is an ephemeral domain event raised by a mutation on an aggregate.
// Events live only for the request that produced them and are never persisted.
type Event struct {
	AggregateID string
	Name        string
	Payload     map[string]any
	OccurredAt  time.Time
}

// NewEvent builds an event stamped with the current UTC time.
func NewEvent(aggregateID, name string, payload map[string]any) Event {
	return Event{
		AggregateID: aggregateID,
		Name:        name,
		Payload:     payload,
		OccurredAt:  time.Now().UTC(),
	}
}
