package forward

import (
	"context"
	"sync"
	"time"
)

// DefaultCooldown 同一用户两次提交之间的最短间隔
const DefaultCooldown = 30 * time.Second

// RateLimiter 按用户的冷却限制
// 可替换为外部存储（例如 Redis）实现
type RateLimiter interface {
	// TryAccept 冷却期内返回 false 且不修改状态；否则记录 now 并返回 true
	TryAccept(ctx context.Context, userID int64, now time.Time) (bool, error)
}

// MemoryRateLimiter 进程内冷却表
// 记录不会被清理，规模受授权用户数量限制
type MemoryRateLimiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     map[int64]time.Time
}

// NewMemoryRateLimiter 创建进程内冷却限制器
func NewMemoryRateLimiter(cooldown time.Duration) *MemoryRateLimiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &MemoryRateLimiter{
		cooldown: cooldown,
		last:     make(map[int64]time.Time),
	}
}

// TryAccept 实现 RateLimiter
func (r *MemoryRateLimiter) TryAccept(_ context.Context, userID int64, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if last, ok := r.last[userID]; ok && now.Sub(last) < r.cooldown {
		return false, nil
	}
	r.last[userID] = now
	return true, nil
}
