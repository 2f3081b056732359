package event

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/roomsync/reservation-system/internal/core/domain"
	"github.com/roomsync/reservation-system/internal/core/ports"
)

// RegisterDefaultHandlers subscribes the built-in side effects decoupled from
// the use cases that trigger them: a welcome notification on registration and
// an audit entry when an admin provisions an account.
func RegisterDefaultHandlers(d *Dispatcher, mailer ports.Mailer, log zerolog.Logger) {
	d.Register(domain.EventUserCreated, func(ctx context.Context, ev domain.Event) error {
		email, _ := ev.Payload["email"].(string)
		name, _ := ev.Payload["name"].(string)
		return mailer.SendWelcome(ctx, email, name)
	})

	d.Register(domain.EventUserAdminCreated, func(_ context.Context, ev domain.Event) error {
		log.Info().
			Str("aggregate_id", ev.AggregateID).
			Interface("payload", ev.Payload).
			Msg("audit: user provisioned by admin")
		return nil
	})

	d.Register(domain.EventUserPasswordReset, func(_ context.Context, ev domain.Event) error {
		log.Info().Str("aggregate_id", ev.AggregateID).Msg("audit: password reset completed")
		return nil
	})
}
