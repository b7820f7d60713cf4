package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/swiftride/admin-auth/internal/domain"
)

// RedisTokenRepo implements domain.TokenRepository using Redis.
//
// Key layout:
//
//	auth:refresh:<token>       -> admin id, TTL = refresh token lifetime
//	auth:refresh:admin:<id>    -> set of that admin's outstanding tokens
//
// The per-admin set makes "log out everywhere" possible without scanning.
type RedisTokenRepo struct {
	client *redis.Client
}

// NewRedisTokenRepo creates a new repository instance.
func NewRedisTokenRepo(client *redis.Client) *RedisTokenRepo {
	return &RedisTokenRepo{client: client}
}

func tokenKey(token string) string {
	return fmt.Sprintf("auth:refresh:%s", token)
}

func adminKey(adminID string) string {
	return fmt.Sprintf("auth:refresh:admin:%s", adminID)
}

// Store saves an opaque token with a TTL and indexes it under its owner.
func (r *RedisTokenRepo) Store(ctx context.Context, adminID, token string, ttl time.Duration) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, tokenKey(token), adminID, ttl)
	pipe.SAdd(ctx, adminKey(adminID), token)
	// The index only needs to outlive its longest-lived member.
	pipe.Expire(ctx, adminKey(adminID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// Consume looks up and deletes the token in one atomic GETDEL, returning the
// owning admin id. Two concurrent calls with the same token get exactly one
// winner; the loser sees domain.ErrTokenNotFound. An expired key is already
// gone, so expiry and absence are indistinguishable here, which is the
// behavior we want.
func (r *RedisTokenRepo) Consume(ctx context.Context, token string) (string, error) {
	adminID, err := r.client.GetDel(ctx, tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrTokenNotFound
		}
		return "", fmt.Errorf("redis error: %w", err)
	}

	r.client.SRem(ctx, adminKey(adminID), token)
	return adminID, nil
}

// Delete removes a single token (logout).
func (r *RedisTokenRepo) Delete(ctx context.Context, token string) error {
	adminID, err := r.client.Get(ctx, tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil // already gone
		}
		return fmt.Errorf("redis error: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, tokenKey(token))
	pipe.SRem(ctx, adminKey(adminID), token)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// DeleteAll removes every outstanding token for an admin ("log out
// everywhere").
func (r *RedisTokenRepo) DeleteAll(ctx context.Context, adminID string) error {
	tokens, err := r.client.SMembers(ctx, adminKey(adminID)).Result()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}

	pipe := r.client.TxPipeline()
	for _, token := range tokens {
		pipe.Del(ctx, tokenKey(token))
	}
	pipe.Del(ctx, adminKey(adminID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete refresh tokens: %w", err)
	}
	return nil
}
