package telegram

import (
	"context"
	"strconv"
	"strings"

	"relay_bot/internal/telegram/forward"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
)

// telegramAPI go-telegram/bot 中转发流程用到的方法
type telegramAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*botModels.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*botModels.Message, error)
	ForwardMessage(ctx context.Context, params *bot.ForwardMessageParams) (*botModels.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// botTransport 用 go-telegram/bot 实现 forward.Transport
type botTransport struct {
	api telegramAPI
}

func newBotTransport(api telegramAPI) *botTransport {
	return &botTransport{api: api}
}

func (t *botTransport) SendText(ctx context.Context, msg forward.OutgoingText) (forward.MessageRef, error) {
	params := &bot.SendMessageParams{
		ChatID: msg.ChatID,
		Text:   msg.Text,
	}
	if msg.ReplyTo > 0 {
		params.ReplyParameters = &botModels.ReplyParameters{
			MessageID:                msg.ReplyTo,
			AllowSendingWithoutReply: true,
		}
	}
	if len(msg.Buttons) > 0 {
		params.ReplyMarkup = inlineKeyboard(msg.Buttons)
	}

	sent, err := t.api.SendMessage(ctx, params)
	if err != nil {
		return forward.MessageRef{}, err
	}
	return forward.MessageRef{ChatID: sent.Chat.ID, MessageID: sent.ID}, nil
}

// EditText 编辑文本会同时移除内联按钮
func (t *botTransport) EditText(ctx context.Context, ref forward.MessageRef, text string) error {
	_, err := t.api.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
		Text:      text,
	})
	if isMessageNotModified(err) {
		return nil
	}
	return err
}

func (t *botTransport) ForwardMessage(ctx context.Context, destination string, fromChatID int64, messageID int) error {
	_, err := t.api.ForwardMessage(ctx, &bot.ForwardMessageParams{
		ChatID:     destinationChatID(destination),
		FromChatID: fromChatID,
		MessageID:  messageID,
	})
	return err
}

func (t *botTransport) AnswerCallback(ctx context.Context, callbackID string) error {
	_, err := t.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
	})
	return err
}

// inlineKeyboard 所有按钮放在同一行
func inlineKeyboard(buttons []forward.Button) *botModels.InlineKeyboardMarkup {
	row := make([]botModels.InlineKeyboardButton, 0, len(buttons))
	for _, button := range buttons {
		row = append(row, botModels.InlineKeyboardButton{Text: button.Text, CallbackData: button.Data})
	}
	return &botModels.InlineKeyboardMarkup{
		InlineKeyboard: [][]botModels.InlineKeyboardButton{row},
	}
}

// destinationChatID 数字 ID 按 int64 发送，其余（@username）原样发送
func destinationChatID(destination string) any {
	if id, err := strconv.ParseInt(destination, 10, 64); err == nil {
		return id
	}
	return destination
}

func isMessageNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
