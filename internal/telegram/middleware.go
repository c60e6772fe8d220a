package telegram

import (
	"context"

	"relay_bot/internal/logger"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
)

// asyncHandler 把 handler 交给工作池执行，避免阻塞更新分发
func (b *Bot) asyncHandler(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
		b.workerPool.Submit(HandlerTask{
			Ctx:         ctx,
			BotInstance: botInstance,
			Update:      update,
			Handler:     next,
		})
	}
}

// requireSender 中间件：忽略没有发送者的消息（频道帖子、匿名管理员）
func requireSender(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
		if update.Message == nil || update.Message.From == nil {
			logger.L().Debugf("Ignoring message without sender in update %d", update.ID)
			return
		}

		next(ctx, botInstance, update)
	}
}
