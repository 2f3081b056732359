// Package mail is the outbound notification boundary. The auth core hands
// off recipients and credentials here; message formatting and SMTP delivery
// belong to an external collaborator, so the default implementation only
// records the hand-off.
package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/roomsync/reservation-system/internal/core/ports"
)

// LogMailer satisfies ports.Mailer by logging each hand-off. Reset tokens are
// never logged; only the fact that one was issued.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

var _ ports.Mailer = (*LogMailer)(nil)

func (m *LogMailer) SendPasswordReset(_ context.Context, email, _ string) error {
	m.log.Info().Str("email", email).Msg("password reset notification handed off")
	return nil
}

func (m *LogMailer) SendWelcome(_ context.Context, email, name string) error {
	m.log.Info().Str("email", email).Str("name", name).Msg("welcome notification handed off")
	return nil
}
