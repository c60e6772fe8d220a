package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cooldownKeyPrefix = "relay:cooldown:"

type setNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// CooldownStore 基于 SET NX PX 的冷却存储，可在多个实例间共享
// 键在冷却期结束时由 Redis 自动过期
type CooldownStore struct {
	rdb      setNXer
	cooldown time.Duration
}

// NewCooldownStore 创建 Redis 冷却存储
func NewCooldownStore(rdb setNXer, cooldown time.Duration) *CooldownStore {
	return &CooldownStore{rdb: rdb, cooldown: cooldown}
}

// TryAccept 键不存在时写入并接受；存在说明仍在冷却期
func (s *CooldownStore) TryAccept(ctx context.Context, userID int64, now time.Time) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, cooldownKey(userID), now.UnixMilli(), s.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("redis cooldown check failed: %w", err)
	}
	return ok, nil
}

func cooldownKey(userID int64) string {
	return fmt.Sprintf("%s%d", cooldownKeyPrefix, userID)
}
