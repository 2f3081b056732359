package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roomsync/reservation-system/internal/core/domain"
	"github.com/roomsync/reservation-system/internal/core/ports"
)

const resetKeyPrefix = "reset_token:"

// ResetTokenStore holds single-use password reset credentials in Redis,
// keyed by token hash with the configured TTL.
type ResetTokenStore struct {
	client *redis.Client
}

func NewResetTokenStore(client *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{client: client}
}

var _ ports.ResetTokenStore = (*ResetTokenStore)(nil)

func (s *ResetTokenStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, resetKeyPrefix+hashToken(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	return nil
}

// Consume atomically reads and deletes the token (GETDEL), guaranteeing a
// credential can be used at most once even under concurrent requests.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, resetKeyPrefix+hashToken(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", domain.ErrInvalidResetToken
		}
		return "", fmt.Errorf("consume reset token: %w", err)
	}
	return userID, nil
}
