package telegram

import (
	"strings"

	"relay_bot/internal/telegram/forward"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
)

// contentKind 识别可提交的消息类型；其他类型返回空字符串
func contentKind(msg *botModels.Message) forward.ContentKind {
	if msg == nil {
		return ""
	}

	switch {
	case len(msg.Photo) > 0:
		return forward.KindPhoto
	case msg.Video != nil:
		return forward.KindVideo
	case msg.Audio != nil:
		return forward.KindAudio
	case msg.Text != "" && !strings.HasPrefix(msg.Text, "/"):
		return forward.KindText
	}
	return ""
}

// commandMatcher 匹配 /name 以及群组中的 /name@BotName
func commandMatcher(name string) bot.MatchFunc {
	return func(update *botModels.Update) bool {
		return update != nil && update.Message != nil && commandName(update.Message.Text) == name
	}
}

// commandName 提取命令名（去掉 / 和 @BotName），非命令返回空字符串
func commandName(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}

	cmd := strings.TrimPrefix(strings.Fields(text)[0], "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd
}

// isSubmissionUpdate 文本（非命令）、图片、视频、音频消息
func isSubmissionUpdate(update *botModels.Update) bool {
	return update != nil && contentKind(update.Message) != ""
}

// submissionFromMessage 转换为提交事件
func submissionFromMessage(msg *botModels.Message) (forward.Submission, bool) {
	if msg == nil || msg.From == nil {
		return forward.Submission{}, false
	}

	kind := contentKind(msg)
	if kind == "" {
		return forward.Submission{}, false
	}

	return forward.Submission{
		Submitter: forward.Submitter{
			UserID:   msg.From.ID,
			Username: msg.From.Username,
		},
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Kind:      kind,
	}, true
}

// callbackFromQuery 转换为按钮回调，提示消息不可访问时只保留会话 ID
func callbackFromQuery(query *botModels.CallbackQuery) forward.Callback {
	cb := forward.Callback{
		ID:   query.ID,
		Data: query.Data,
		From: forward.Submitter{
			UserID:   query.From.ID,
			Username: query.From.Username,
		},
	}

	switch {
	case query.Message.Message != nil:
		cb.Prompt = forward.MessageRef{
			ChatID:    query.Message.Message.Chat.ID,
			MessageID: query.Message.Message.ID,
		}
	case query.Message.InaccessibleMessage != nil:
		cb.Prompt = forward.MessageRef{ChatID: query.Message.InaccessibleMessage.Chat.ID}
	}

	return cb
}
