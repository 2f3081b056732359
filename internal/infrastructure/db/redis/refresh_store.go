package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roomsync/reservation-system/internal/core/domain"
	"github.com/roomsync/reservation-system/internal/core/ports"
)

const (
	refreshKeyPrefix = "refresh_token:"
	userSetPrefix    = "refresh_user:"
)

// RefreshTokenStore keeps refresh token records in Redis, keyed by a SHA-256
// hash of the opaque token so the secret itself is never stored. A per-user
// set of hashes supports whole-family revocation.
type RefreshTokenStore struct {
	client *redis.Client
}

func NewRefreshTokenStore(client *redis.Client) *RefreshTokenStore {
	return &RefreshTokenStore{client: client}
}

var _ ports.RefreshTokenStore = (*RefreshTokenStore)(nil)

type refreshRecord struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
	Rotated   bool   `json:"rotated,omitempty"`
}

func (s *RefreshTokenStore) Save(ctx context.Context, token string, rec ports.RefreshTokenRecord, ttl time.Duration) error {
	payload, err := json.Marshal(refreshRecord{
		UserID:    rec.UserID,
		Role:      rec.Role,
		IssuedAt:  rec.IssuedAt.Unix(),
		ExpiresAt: rec.ExpiresAt.Unix(),
		Rotated:   rec.Rotated,
	})
	if err != nil {
		return fmt.Errorf("marshal refresh token record: %w", err)
	}

	hashed := hashToken(token)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, refreshKeyPrefix+hashed, payload, ttl)
	pipe.SAdd(ctx, userSetPrefix+rec.UserID, hashed)
	pipe.Expire(ctx, userSetPrefix+rec.UserID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (s *RefreshTokenStore) Find(ctx context.Context, token string) (*ports.RefreshTokenRecord, error) {
	val, err := s.client.Get(ctx, refreshKeyPrefix+hashToken(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("refresh token lookup: %w", err)
	}

	var rec refreshRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("decode refresh token record: %w", err)
	}
	return &ports.RefreshTokenRecord{
		UserID:    rec.UserID,
		Role:      rec.Role,
		IssuedAt:  time.Unix(rec.IssuedAt, 0).UTC(),
		ExpiresAt: time.Unix(rec.ExpiresAt, 0).UTC(),
		Rotated:   rec.Rotated,
	}, nil
}

func (s *RefreshTokenStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, refreshKeyPrefix+hashToken(token)).Err()
}

// DeleteAllForUser removes every refresh token tracked for the user.
func (s *RefreshTokenStore) DeleteAllForUser(ctx context.Context, userID string) error {
	setKey := userSetPrefix + userID
	hashes, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("list user refresh tokens: %w", err)
	}

	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, refreshKeyPrefix+h)
	}
	keys = append(keys, setKey)
	return s.client.Del(ctx, keys...).Err()
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
