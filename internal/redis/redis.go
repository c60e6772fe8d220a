package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"relay_bot/internal/config"
)

// Client 封装 Redis 客户端
type Client struct {
	rdb *redis.Client
}

// Config Redis 连接配置
type Config struct {
	Addr     string
	Password string
	DB       int
}

// New 连接 Redis 并验证连通性
func New(cfg Config) (*Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// InitFromConfig 从应用配置初始化 Redis（未配置 REDIS_ADDR 时返回 nil）
func InitFromConfig(cfg *config.Config) (*Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	return New(Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// Close 关闭连接
func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// Ping 验证与 Redis 的连接
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// CooldownStore 返回基于该连接的冷却存储
func (c *Client) CooldownStore(cooldown time.Duration) *CooldownStore {
	return NewCooldownStore(c.rdb, cooldown)
}
