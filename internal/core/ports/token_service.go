package ports

import (
	"context"
	"time"
)

// Claims is the redacted identity carried by a verified access token.
// It never contains the email or password hash.
type Claims struct {
	UserID string
	Role   string
}

// AccessToken is a signed, stateless credential plus its expiry.
type AccessToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenPair is the result of a login or a refresh-token rotation.
type TokenPair struct {
	AccessToken  AccessToken `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

// AccessTokenVerifier is the subset of TokenService the authorization
// middleware needs.
type AccessTokenVerifier interface {
	// VerifyAccessToken fails with domain.ErrInvalidAccessToken when the
	// signature does not validate, the token is malformed, or it has expired.
	VerifyAccessToken(token string) (Claims, error)
}

// TokenService issues and verifies access tokens and manages the refresh
// token lifecycle. Access tokens are verified purely by signature and expiry;
// refresh tokens are opaque secrets looked up in storage.
type TokenService interface {
	AccessTokenVerifier

	IssueAccessToken(userID, role string) (AccessToken, error)
	// IssueRefreshToken generates and persists a high-entropy opaque token
	// bound to the user.
	IssueRefreshToken(ctx context.Context, userID, role string) (string, error)
	// RotateRefreshToken invalidates oldToken and returns a fresh pair.
	// Presenting an already-rotated token fails with
	// domain.ErrInvalidRefreshToken and revokes every live refresh token of
	// the same user, on the assumption that the token family is compromised.
	RotateRefreshToken(ctx context.Context, oldToken string) (*TokenPair, error)
	// RevokeAllForUser invalidates every live refresh token of the user.
	RevokeAllForUser(ctx context.Context, userID string) error
}
