package repository

import (
	"context"

	"relay_bot/internal/telegram/models"
)

// ForwardRecordRepository 转发审计记录数据访问接口
type ForwardRecordRepository interface {
	// BulkCreateRecords 批量写入一次转发任务的结果
	BulkCreateRecords(ctx context.Context, records []*models.ForwardRecord) error

	// ListByTask 查询某次转发任务的所有记录
	ListByTask(ctx context.Context, taskID string) ([]*models.ForwardRecord, error)

	// EnsureIndexes 确保索引存在
	EnsureIndexes(ctx context.Context) error
}
