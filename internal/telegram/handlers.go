package telegram

import (
	"context"
	"errors"

	"relay_bot/internal/logger"
	"relay_bot/internal/telegram/forward"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
)

const welcomeText = "Welcome! Only authorized users can forward messages using this bot."

// registerHandlers 注册所有处理器（异步执行）
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandlerMatchFunc(commandMatcher("start"), b.asyncHandler(b.handleStart))
	b.bot.RegisterHandlerMatchFunc(commandMatcher("ping"), b.asyncHandler(requireSender(b.handlePing)))
	b.bot.RegisterHandlerMatchFunc(commandMatcher("task"), b.asyncHandler(requireSender(b.handleTask)))

	// 文本 / 图片 / 视频 / 音频 - 提交转发
	b.bot.RegisterHandlerMatchFunc(isSubmissionUpdate,
		b.asyncHandler(requireSender(b.handleSubmission)))

	// 确认 / 取消按钮
	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, forward.ConfirmTokenPrefix, bot.MatchTypePrefix,
		b.asyncHandler(b.handleCallback))
	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, forward.CancelTokenData, bot.MatchTypeExact,
		b.asyncHandler(b.handleCallback))

	logger.L().Debug("All handlers registered with async execution")
}

// handleStart 处理 /start 命令
func (b *Bot) handleStart(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil {
		return
	}
	b.sendMessage(ctx, update.Message.Chat.ID, welcomeText)
}

// handleSubmission 处理提交的消息
func (b *Bot) handleSubmission(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	sub, ok := submissionFromMessage(update.Message)
	if !ok {
		return
	}

	err := b.forward.HandleSubmission(ctx, sub)
	switch {
	case err == nil:
	case errors.Is(err, forward.ErrUnauthorized), errors.Is(err, forward.ErrRateLimited):
		// 已回复用户
	default:
		logger.L().Errorf("Failed to handle forward request from user %d: %v", sub.Submitter.UserID, err)
		b.sendErrorMessage(ctx, sub.ChatID, "Something went wrong. Please try again later.", sub.MessageID)
	}
}

// handleCallback 处理确认 / 取消按钮
func (b *Bot) handleCallback(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.CallbackQuery == nil {
		return
	}

	cb := callbackFromQuery(update.CallbackQuery)
	err := b.forward.HandleCallback(ctx, cb)
	switch {
	case err == nil:
	case errors.Is(err, forward.ErrPromptResolved):
		logger.L().Infof("Ignoring repeated tap from user %d: %v", cb.From.UserID, err)
	case errors.Is(err, forward.ErrMalformedConfirmation):
		logger.L().Warnf("Ignoring callback from user %d: %v", cb.From.UserID, err)
	case errors.Is(err, forward.ErrUnauthorized):
		logger.L().Warnf("Ignoring confirmation from unauthorized user %d", cb.From.UserID)
	default:
		logger.L().Errorf("Failed to handle callback from user %d: %v", cb.From.UserID, err)
	}
}
