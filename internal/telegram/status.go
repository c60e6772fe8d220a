package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"relay_bot/internal/telegram/forward"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck 外部依赖的连通性检查，用于 /ping
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// handlePing 处理 /ping 命令（仅授权用户）
func (b *Bot) handlePing(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	msg := update.Message
	submitter := forward.Submitter{UserID: msg.From.ID, Username: msg.From.Username}
	if !b.authorizer.IsAuthorized(submitter) {
		return
	}

	b.sendMessage(ctx, msg.Chat.ID, b.buildPingMessage(ctx), msg.ID)
}

// buildPingMessage 构建 /ping 命令的响应文本
func (b *Bot) buildPingMessage(ctx context.Context) string {
	lines := []string{"🏓 Pong!"}

	if !b.startTime.IsZero() {
		lines = append(lines, fmt.Sprintf("⏱ Uptime: %s", formatDuration(time.Since(b.startTime))))
	}

	lines = append(lines, fmt.Sprintf("📨 Destinations: %d", len(b.destinations)))

	if b.workerPool != nil {
		stats := b.workerPool.Stats()
		lines = append(lines, fmt.Sprintf("🛠 Workers: %d, queued %d, dropped %d", stats.Workers, stats.Queued, stats.Dropped))
	}

	for _, check := range b.healthChecks {
		checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := check.Ping(checkCtx)
		cancel()

		if err != nil {
			lines = append(lines, fmt.Sprintf("🗄 %s: ⚠️ %v", check.Name, err))
		} else {
			lines = append(lines, fmt.Sprintf("🗄 %s: ✅ ok", check.Name))
		}
	}

	return strings.Join(lines, "\n")
}

// formatDuration 将持续时间格式化为人类可读的字符串
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	d = d.Round(time.Second)

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second

	parts := make([]string, 0, 4)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}

	return strings.Join(parts, " ")
}
