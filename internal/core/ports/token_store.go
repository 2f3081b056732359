package ports

import (
	"context"
	"time"
)

// RefreshTokenRecord is the stored state of one refresh token. The opaque
// token itself is never stored verbatim; implementations key records by a
// one-way hash of it.
type RefreshTokenRecord struct {
	UserID    string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	// Rotated marks a consumed token kept as a tombstone until expiry.
	// Presenting a rotated token is treated as replay of a stolen credential.
	Rotated bool
}

// RefreshTokenStore persists refresh tokens so they can be rotated and
// revoked. Find returns domain.ErrInvalidRefreshToken when the token is
// unknown or expired.
type RefreshTokenStore interface {
	Save(ctx context.Context, token string, rec RefreshTokenRecord, ttl time.Duration) error
	Find(ctx context.Context, token string) (*RefreshTokenRecord, error)
	Delete(ctx context.Context, token string) error
	// DeleteAllForUser revokes the user's entire token family.
	DeleteAllForUser(ctx context.Context, userID string) error
}

// ResetTokenStore holds single-use password reset credentials.
type ResetTokenStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	// Consume atomically looks up and invalidates the token, returning the
	// bound user id. A second call with the same token fails with
	// domain.ErrInvalidResetToken.
	Consume(ctx context.Context, token string) (string, error)
}
