package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/roomsync/reservation-system/internal/core/domain"
	"github.com/roomsync/reservation-system/internal/core/event"
	"github.com/roomsync/reservation-system/internal/core/ports"
)

const defaultResetTokenTTL = time.Hour

// AuthService implements registration, login, token refresh and password
// reset on top of the repository and token service ports.
type AuthService struct {
	users      ports.UserRepository
	tokens     ports.TokenService
	resets     ports.ResetTokenStore
	mailer     ports.Mailer
	events     *event.Dispatcher
	bcryptCost int
	resetTTL   time.Duration
	log        zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	tokens ports.TokenService,
	resets ports.ResetTokenStore,
	mailer ports.Mailer,
	events *event.Dispatcher,
	bcryptCost int,
	resetTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if resetTTL <= 0 {
		resetTTL = defaultResetTokenTTL
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		resets:     resets,
		mailer:     mailer,
		events:     events,
		bcryptCost: bcryptCost,
		resetTTL:   resetTTL,
		log:        log,
	}
}

var _ ports.AuthService = (*AuthService)(nil)

// Register creates a member account. The created user is returned without
// tokens; registration does not auto-login.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.Role = domain.RoleMember
	return s.createUser(ctx, in, domain.EventUserCreated)
}

// CreateUserByAdmin creates an account with the requested role. The admin
// role gate runs at the transport layer; by the time this executes the caller
// is known to be an admin.
func (s *AuthService) CreateUserByAdmin(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Role == "" {
		in.Role = domain.RoleMember
	}
	if !domain.ValidRole(in.Role) {
		return nil, domain.ErrUnexpected
	}
	return s.createUser(ctx, in, domain.EventUserAdminCreated)
}

func (s *AuthService) createUser(ctx context.Context, in ports.RegisterInput, eventName string) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)

	// Pre-check so a duplicate surfaces as a domain failure instead of a
	// unique index violation from the insert.
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, domain.ErrUnexpected
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         in.Name,
		Role:         in.Role,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.events.Record(domain.NewEvent(user.ID, eventName, map[string]any{
		"email": email,
		"name":  in.Name,
		"role":  in.Role,
	}))

	created, err := s.users.Save(ctx, user)
	if err != nil {
		s.events.DiscardForAggregate(user.ID)
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user created")
	return created, nil
}

// Login authenticates {email, password} and issues a token pair. Unknown
// email and wrong password yield the identical failure so responses cannot be
// used to enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	access, err := s.tokens.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(ctx, user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("login succeeded")

	return &ports.LoginResult{
		User:   user,
		Tokens: ports.TokenPair{AccessToken: access, RefreshToken: refresh},
	}, nil
}

// Refresh exchanges a refresh token for a new pair via rotation.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	return s.tokens.RotateRefreshToken(ctx, refreshToken)
}

// RequestPasswordReset generates a single-use, time-limited reset credential
// and hands {email, token} to the mailer. The core neither formats nor sends
// the message.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if err == domain.ErrUserNotFound {
			return domain.ErrNonExistentEmail
		}
		return err
	}

	token, err := randomToken()
	if err != nil {
		return domain.ErrUnexpected
	}
	if err := s.resets.Save(ctx, token, user.ID, s.resetTTL); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("password reset notification failed")
		return domain.ErrUnexpected
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset requested")
	return nil
}

// ConfirmPasswordReset consumes the reset credential, stores the new hash and
// revokes every refresh token of the user. The credential cannot be reused.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	userID, err := s.resets.Consume(ctx, resetToken)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return domain.ErrUnexpected
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()

	s.events.Record(domain.NewEvent(user.ID, domain.EventUserPasswordReset, map[string]any{
		"email": user.Email,
	}))

	if _, err := s.users.Save(ctx, user); err != nil {
		s.events.DiscardForAggregate(user.ID)
		return err
	}

	// A reset proves the old credential may be compromised; drop every live
	// session.
	if err := s.tokens.RevokeAllForUser(ctx, user.ID); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("refresh token revocation failed")
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset confirmed")
	return nil
}
