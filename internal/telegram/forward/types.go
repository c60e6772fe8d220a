package forward

import (
	"context"
	"time"
)

// ContentKind 可提交的消息类型
type ContentKind string

const (
	KindText  ContentKind = "text"
	KindPhoto ContentKind = "photo"
	KindVideo ContentKind = "video"
	KindAudio ContentKind = "audio"
)

// Submitter 提交转发请求的用户
type Submitter struct {
	UserID   int64
	Username string
}

// Submission 一次 "提交转发" 事件
type Submission struct {
	Submitter Submitter
	ChatID    int64
	MessageID int
	Kind      ContentKind
}

// PendingForward 已通过授权与限流、等待确认的转发请求
type PendingForward struct {
	SourceChatID    int64
	SourceMessageID int
	RequestedBy     int64
	CreatedAt       time.Time
}

// Callback 按钮回调
type Callback struct {
	ID     string
	From   Submitter
	Data   string
	Prompt MessageRef // 提示消息；不可访问时 MessageID 为 0
}

// MessageRef 定位一条已发送的消息
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Button 内联按钮
type Button struct {
	Text string
	Data string
}

// OutgoingText 待发送的文本消息
type OutgoingText struct {
	ChatID  int64
	Text    string
	ReplyTo int
	Buttons []Button
}

// Transport 消息平台的最小操作集合
type Transport interface {
	// SendText 发送文本消息（可附带一行内联按钮）
	SendText(ctx context.Context, msg OutgoingText) (MessageRef, error)

	// EditText 原地替换消息文本
	EditText(ctx context.Context, ref MessageRef, text string) error

	// ForwardMessage 将源消息转发到目标频道
	ForwardMessage(ctx context.Context, destination string, fromChatID int64, messageID int) error

	// AnswerCallback 确认收到按钮回调
	AnswerCallback(ctx context.Context, callbackID string) error
}
