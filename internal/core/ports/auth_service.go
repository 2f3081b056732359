package ports

import (
	"context"

	"github.com/roomsync/reservation-system/internal/core/domain"
)

// RegisterInput carries the fields required to create a user. Role is only
// honoured on the admin-creation path; self-registration always produces a
// member.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User   *domain.User `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}

// AuthService implements registration, login, token refresh and the
// password-reset flow.
type AuthService interface {
	// Register creates a member account. Registration does not log the user
	// in; a subsequent Login call is required.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// CreateUserByAdmin creates an account with an arbitrary role. Callers
	// must already have passed the admin role gate at the transport layer.
	CreateUserByAdmin(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// RequestPasswordReset generates a single-use reset credential and hands
	// it to the mailer. Fails with domain.ErrNonExistentEmail for unknown
	// addresses.
	RequestPasswordReset(ctx context.Context, email string) error
	// ConfirmPasswordReset consumes the reset credential and stores the new
	// password hash. All refresh tokens of the user are revoked.
	ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error
}

// Mailer is the outbound notification boundary. The core hands off the
// recipient and the reset credential; formatting and delivery happen outside.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, resetToken string) error
	SendWelcome(ctx context.Context, email, name string) error
}
