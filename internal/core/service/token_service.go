package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/roomsync/reservation-system/internal/core/domain"
	"github.com/roomsync/reservation-system/internal/core/ports"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// accessClaims is the signed claim set of an access token: user id, role,
// issued-at and expiry. Nothing else ever goes into a token.
type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues HS256-signed access tokens and manages opaque,
// storage-backed refresh tokens with rotation-on-use.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      ports.RefreshTokenStore
	log        zerolog.Logger

	// now is swappable in tests to exercise expiry.
	now func() time.Time
}

// NewTokenService builds a TokenService. The signing secret is process-wide
// configuration validated at startup; it is never mutated afterwards.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, store ports.RefreshTokenStore, log zerolog.Logger) *TokenService {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTokenTTL
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		log:        log,
		now:        time.Now,
	}
}

var _ ports.TokenService = (*TokenService)(nil)

// IssueAccessToken signs a claim set {sub, role, iat, exp} valid for the
// configured lifetime.
func (s *TokenService) IssueAccessToken(userID, role string) (ports.AccessToken, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.accessTTL)

	claims := accessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return ports.AccessToken{}, domain.ErrUnexpected
	}
	return ports.AccessToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// VerifyAccessToken validates signature, structure and expiry, and returns
// the redacted claims. Every failure mode maps to ErrInvalidAccessToken.
func (s *TokenService) VerifyAccessToken(token string) (ports.Claims, error) {
	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return ports.Claims{}, domain.ErrInvalidAccessToken
	}

	return ports.Claims{UserID: claims.Subject, Role: claims.Role}, nil
}

// IssueRefreshToken generates a high-entropy opaque token and persists it
// bound to the user for the configured refresh lifetime.
func (s *TokenService) IssueRefreshToken(ctx context.Context, userID, role string) (string, error) {
	raw, err := randomToken()
	if err != nil {
		return "", domain.ErrUnexpected
	}

	now := s.now().UTC()
	rec := ports.RefreshTokenRecord{
		UserID:    userID,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	if err := s.store.Save(ctx, raw, rec, s.refreshTTL); err != nil {
		return "", err
	}
	return raw, nil
}

// RotateRefreshToken exchanges a live refresh token for a fresh token pair.
// The old token is kept as a rotated tombstone until its natural expiry;
// presenting it again revokes the user's entire token family.
func (s *TokenService) RotateRefreshToken(ctx context.Context, oldToken string) (*ports.TokenPair, error) {
	rec, err := s.store.Find(ctx, oldToken)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if now.After(rec.ExpiresAt) {
		_ = s.store.Delete(ctx, oldToken)
		return nil, domain.ErrInvalidRefreshToken
	}

	if rec.Rotated {
		// Replay of an already-used token: assume theft and revoke everything
		// issued to this user.
		s.log.Warn().Str("user_id", rec.UserID).Msg("rotated refresh token reused, revoking token family")
		if err := s.store.DeleteAllForUser(ctx, rec.UserID); err != nil {
			s.log.Error().Err(err).Str("user_id", rec.UserID).Msg("token family revocation failed")
		}
		return nil, domain.ErrInvalidRefreshToken
	}

	tombstone := *rec
	tombstone.Rotated = true
	if err := s.store.Save(ctx, oldToken, tombstone, rec.ExpiresAt.Sub(now)); err != nil {
		return nil, err
	}

	refresh, err := s.IssueRefreshToken(ctx, rec.UserID, rec.Role)
	if err != nil {
		return nil, err
	}
	access, err := s.IssueAccessToken(rec.UserID, rec.Role)
	if err != nil {
		return nil, err
	}

	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RevokeAllForUser invalidates every refresh token of a user, e.g. after a
// password reset.
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID string) error {
	return s.store.DeleteAllForUser(ctx, userID)
}

// randomToken returns 32 bytes of cryptographic randomness, base64url encoded.
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
