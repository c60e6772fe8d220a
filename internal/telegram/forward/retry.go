package forward

import (
	"context"
	"errors"
	"time"

	"github.com/go-telegram/bot"
)

const (
	// MaxForwardAttempts 每个目标频道的最大尝试次数（含首次）
	MaxForwardAttempts = 3
	// DefaultRetryDelay 两次尝试之间的固定间隔
	DefaultRetryDelay = 5 * time.Second
)

// shouldRetryForward Telegram 明确拒绝（4xx）的错误不重试，其余一律视为瞬时错误
//
// go-telegram/bot 把 http.Client 的网络错误转成纯字符串，无法按 net.Error 判断。
func shouldRetryForward(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var tooMany *bot.TooManyRequestsError
	if errors.As(err, &tooMany) {
		return true
	}

	var migrateErr *bot.MigrateError
	if errors.As(err, &migrateErr) {
		return false
	}

	if errors.Is(err, bot.ErrorForbidden) ||
		errors.Is(err, bot.ErrorBadRequest) ||
		errors.Is(err, bot.ErrorUnauthorized) ||
		errors.Is(err, bot.ErrorNotFound) ||
		errors.Is(err, bot.ErrorConflict) {
		return false
	}

	return true
}

// migrateToChatIDFromError 群组升级为超级群组时返回新的 chat id
func migrateToChatIDFromError(err error) (int64, bool) {
	if err == nil {
		return 0, false
	}

	var migrateErr *bot.MigrateError
	if !errors.As(err, &migrateErr) {
		return 0, false
	}
	if migrateErr.MigrateToChatID == 0 {
		return 0, false
	}
	return int64(migrateErr.MigrateToChatID), true
}

// forwardRetryDelay 固定间隔；Telegram 要求更长等待时以 retry_after 为准
func forwardRetryDelay(err error, base time.Duration) time.Duration {
	var tooMany *bot.TooManyRequestsError
	if errors.As(err, &tooMany) {
		if wait := time.Duration(tooMany.RetryAfter) * time.Second; wait > base {
			return wait
		}
	}
	return base
}

// sleepContext 可被 ctx 中断的等待
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
