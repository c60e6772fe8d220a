package telegram

import (
	"context"
	"fmt"
	"strings"

	"relay_bot/internal/logger"
	"relay_bot/internal/telegram/forward"
	"relay_bot/internal/telegram/models"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
)

// TaskLookup 按任务 ID 查询转发审计记录
type TaskLookup interface {
	ListByTask(ctx context.Context, taskID string) ([]*models.ForwardRecord, error)
}

const (
	textTaskUsage    = "Usage: /task <task id>"
	textTaskDisabled = "Forward records are disabled."
)

// handleTask 处理 /task <id>（仅授权用户）
func (b *Bot) handleTask(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	msg := update.Message
	submitter := forward.Submitter{UserID: msg.From.ID, Username: msg.From.Username}
	if !b.authorizer.IsAuthorized(submitter) {
		return
	}

	b.sendMessage(ctx, msg.Chat.ID, b.buildTaskMessage(ctx, commandArgument(msg.Text)), msg.ID)
}

// buildTaskMessage 每个目标频道一行：结果、尝试次数、失败原因
func (b *Bot) buildTaskMessage(ctx context.Context, taskID string) string {
	if taskID == "" {
		return textTaskUsage
	}
	if b.tasks == nil {
		return textTaskDisabled
	}

	records, err := b.tasks.ListByTask(ctx, taskID)
	if err != nil {
		logger.L().Errorf("Failed to load forward records for task %s: %v", taskID, err)
		return "❌ Failed to load forward records."
	}
	if len(records) == 0 {
		return fmt.Sprintf("No forward records for task %s.", taskID)
	}

	lines := []string{fmt.Sprintf("Task %s", taskID)}
	for _, record := range records {
		if record.Succeeded() {
			lines = append(lines, fmt.Sprintf("✅ %s (%d attempt(s))", record.Destination, record.Attempts))
			continue
		}
		lines = append(lines, fmt.Sprintf("❌ %s (%d attempt(s)): %s", record.Destination, record.Attempts, record.Error))
	}
	return strings.Join(lines, "\n")
}

// commandArgument 命令后的第一个参数
func commandArgument(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
