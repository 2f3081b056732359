package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roomsync/reservation-system/internal/api/metrics"
	"github.com/roomsync/reservation-system/internal/core/domain"
	"github.com/roomsync/reservation-system/internal/core/ports"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxUser   = "user"
)

// AuthOption configures the Auth middleware per route group.
type AuthOption func(*authConfig)

type authConfig struct {
	users ports.UserRepository
}

// WithUserFetch makes Auth re-load the full user record by id after token
// verification, for routes whose handlers need fields beyond the redacted
// claims. Without it the middleware is validate-only.
func WithUserFetch(users ports.UserRepository) AuthOption {
	return func(c *authConfig) { c.users = users }
}

// Auth verifies the bearer token and injects the redacted identity into the
// request context. The steps run strictly in order and short-circuit on the
// first failure: extract, verify, optionally load user. The middleware never
// mutates persisted state.
func Auth(verifier ports.AccessTokenVerifier, opts ...AuthOption) echo.MiddlewareFunc {
	var cfg authConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues("missing_token").Inc()
				return err
			}

			claims, err := verifier.VerifyAccessToken(token)
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues("invalid_token").Inc()
				return domain.ErrInvalidAccessToken
			}

			if cfg.users != nil {
				user, err := cfg.users.FindByID(c.Request().Context(), claims.UserID)
				if err != nil {
					metrics.AuthRejectionsTotal.WithLabelValues("user_not_found").Inc()
					return domain.ErrUserNotFound
				}
				c.Set(CtxUser, user)
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxRole, claims.Role)

			return next(c)
		}
	}
}

// bearerToken extracts the token from the Authorization header. A missing or
// malformed header fails with ErrMissingToken.
func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", domain.ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", domain.ErrMissingToken
	}
	return parts[1], nil
}
