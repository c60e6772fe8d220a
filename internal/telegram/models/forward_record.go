package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ForwardRecord 单个目标频道的转发结果（审计用）
type ForwardRecord struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	TaskID          string             `bson:"task_id"`           // 任务ID (UUID)
	SourceChatID    int64              `bson:"source_chat_id"`    // 源聊天ID
	SourceMessageID int64              `bson:"source_message_id"` // 源消息ID
	RequestedBy     int64              `bson:"requested_by"`      // 确认转发的用户
	Destination     string             `bson:"destination"`       // 目标频道（配置值）
	Status          string             `bson:"status"`            // success/failed
	Attempts        int                `bson:"attempts"`          // 实际尝试次数
	Error           string             `bson:"error,omitempty"`   // 失败原因
	CreatedAt       time.Time          `bson:"created_at"`        // 创建时间（TTL索引）
}

const (
	ForwardStatusSuccess = "success"
	ForwardStatusFailed  = "failed"
)

// Succeeded 是否转发成功
func (r *ForwardRecord) Succeeded() bool {
	return r.Status == ForwardStatusSuccess
}
