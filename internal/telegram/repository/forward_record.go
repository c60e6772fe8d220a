package repository

import (
	"context"
	"fmt"
	"time"

	"relay_bot/internal/telegram/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	forwardRecordCollection = "forward_records"
	forwardRecordRetention  = 30 * 24 * time.Hour
)

type forwardRecordRepository struct {
	collection *mongo.Collection
}

// NewForwardRecordRepository 创建转发记录仓储实例
func NewForwardRecordRepository(db *mongo.Database) ForwardRecordRepository {
	return &forwardRecordRepository{
		collection: db.Collection(forwardRecordCollection),
	}
}

// BulkCreateRecords 批量写入一次转发任务的全部结果
func (r *forwardRecordRepository) BulkCreateRecords(ctx context.Context, records []*models.ForwardRecord) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, len(records))
	for i, record := range records {
		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.Now()
		}
		docs[i] = record
	}

	_, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to bulk create forward records: %w", err)
	}
	return nil
}

// ListByTask 按目标频道写入顺序查询某次任务的记录
func (r *forwardRecordRepository) ListByTask(ctx context.Context, taskID string) ([]*models.ForwardRecord, error) {
	filter := bson.M{"task_id": taskID}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query forward records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*models.ForwardRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode forward records: %w", err)
	}

	return records, nil
}

// EnsureIndexes 确保索引存在
func (r *forwardRecordRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// task_id 索引（用于查询某任务的所有记录）
		{
			Keys: bson.D{{Key: "task_id", Value: 1}},
		},
		// TTL 索引（30 天自动删除）
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(forwardRecordRetention / time.Second)),
		},
		// 复合唯一索引（同一任务每个目标频道一条）
		{
			Keys: bson.D{
				{Key: "task_id", Value: 1},
				{Key: "destination", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes for forward_records: %w", err)
	}

	return nil
}
