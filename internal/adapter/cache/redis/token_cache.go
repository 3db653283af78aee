// Package redis содержит кэш токенов доступа поверх Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "authtoken:"

// NewClient создает клиента Redis и проверяет соединение.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// TokenCache реализует ports.TokenCache: ключ токена -> id пользователя с TTL.
type TokenCache struct {
	client goredis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewTokenCache(client goredis.Cmdable, ttl time.Duration, logger *slog.Logger) *TokenCache {
	return &TokenCache{client: client, ttl: ttl, logger: logger}
}

func (c *TokenCache) Get(ctx context.Context, key string) (uuid.UUID, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("redis get token: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		// битое значение считаем промахом и удаляем
		c.logger.Warn("invalid cached token value, evicting", "error", err)
		_ = c.client.Del(ctx, keyPrefix+key).Err()
		return uuid.Nil, false, nil
	}
	return userID, true, nil
}

func (c *TokenCache) Set(ctx context.Context, key string, userID uuid.UUID) error {
	if err := c.client.Set(ctx, keyPrefix+key, userID.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

func (c *TokenCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete token: %w", err)
	}
	return nil
}

// NopTokenCache используется, когда Redis не настроен.
type NopTokenCache struct{}

func (NopTokenCache) Get(context.Context, string) (uuid.UUID, bool, error) { return uuid.Nil, false, nil }
func (NopTokenCache) Set(context.Context, string, uuid.UUID) error        { return nil }
func (NopTokenCache) Delete(context.Context, string) error                { return nil }
