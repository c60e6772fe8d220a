package forward

import (
	"fmt"
	"strconv"
	"strings"
)

// 回调数据的固定前缀与取消按钮数据
const (
	ConfirmTokenPrefix = "confirm_forward"
	CancelTokenData    = "cancel_forward"
)

// TokenKind 确认按钮的类型
type TokenKind int

const (
	TokenConfirm TokenKind = iota + 1
	TokenCancel
)

// Token 无状态的确认令牌，直接编码在按钮回调数据中
//
//	confirm_forward:<chatId>:<messageId>
//	cancel_forward
type Token struct {
	Kind      TokenKind
	ChatID    int64
	MessageID int
}

// ConfirmToken 绑定 (源聊天, 源消息) 的确认令牌
func ConfirmToken(chatID int64, messageID int) Token {
	return Token{Kind: TokenConfirm, ChatID: chatID, MessageID: messageID}
}

// CancelToken 取消令牌（不携带数据）
func CancelToken() Token {
	return Token{Kind: TokenCancel}
}

// String 编码为回调数据
func (t Token) String() string {
	if t.Kind == TokenConfirm {
		return fmt.Sprintf("%s:%d:%d", ConfirmTokenPrefix, t.ChatID, t.MessageID)
	}
	return CancelTokenData
}

// ParseToken 解析回调数据，格式不正确时返回 ErrMalformedConfirmation
func ParseToken(data string) (Token, error) {
	if data == CancelTokenData {
		return CancelToken(), nil
	}

	rest, ok := strings.CutPrefix(data, ConfirmTokenPrefix+":")
	if !ok {
		return Token{}, fmt.Errorf("%w: unknown payload %q", ErrMalformedConfirmation, data)
	}

	parts := strings.Split(rest, ":")
	if len(parts) != 2 {
		return Token{}, fmt.Errorf("%w: expected chat and message id, got %q", ErrMalformedConfirmation, data)
	}

	chatID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || chatID == 0 {
		return Token{}, fmt.Errorf("%w: invalid chat id %q", ErrMalformedConfirmation, parts[0])
	}

	messageID, err := strconv.Atoi(parts[1])
	if err != nil || messageID <= 0 {
		return Token{}, fmt.Errorf("%w: invalid message id %q", ErrMalformedConfirmation, parts[1])
	}

	return ConfirmToken(chatID, messageID), nil
}
