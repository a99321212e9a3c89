package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"velvet/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisCache caches the wallet projection per user. Entries are
// invalidated on every balance mutation, so a hit is at worst as stale as
// the last mutation that raced with the read.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	val, err := c.client.Get(ctx, walletKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	var wallet models.Wallet
	if err := json.Unmarshal([]byte(val), &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (c *RedisCache) SetWallet(ctx context.Context, wallet *models.Wallet) error {
	data, err := json.Marshal(wallet)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, walletKey(wallet.UserID), data, c.ttl).Err()
}

func (c *RedisCache) InvalidateWallet(ctx context.Context, userID uint) error {
	return c.client.Del(ctx, walletKey(userID)).Err()
}

func walletKey(userID uint) string {
	return fmt.Sprintf("wallet:%d", userID)
}
