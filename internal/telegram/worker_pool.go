package telegram

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"

	"relay_bot/internal/logger"
)

// HandlerTask Handler 任务
type HandlerTask struct {
	Ctx         context.Context
	BotInstance *bot.Bot
	Update      *botModels.Update
	Handler     bot.HandlerFunc
}

// PoolStats 工作池计数
type PoolStats struct {
	Workers   int
	Queued    int
	Completed uint64
	Dropped   uint64
	Panics    uint64
}

// WorkerPool Handler 工作池
type WorkerPool struct {
	taskQueue chan HandlerTask
	wg        sync.WaitGroup
	workers   int

	mu     sync.RWMutex
	closed bool

	completed atomic.Uint64
	dropped   atomic.Uint64
	panics    atomic.Uint64
}

// NewWorkerPool 创建工作池
// workers: worker 协程数量
// queueSize: 任务队列大小
func NewWorkerPool(workers int, queueSize int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	pool := &WorkerPool{
		taskQueue: make(chan HandlerTask, queueSize),
		workers:   workers,
	}

	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	logger.L().Infof("Worker pool started with %d workers, queue size %d", workers, queueSize)
	return pool
}

// worker 工作协程
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	logger.L().Debugf("Worker %d started", id)

	for task := range p.taskQueue {
		p.run(id, task)
	}

	logger.L().Debugf("Worker %d stopped", id)
}

// run 执行 handler，带 panic recovery
func (p *WorkerPool) run(id int, task HandlerTask) {
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			logger.L().Errorf("Worker %d: handler panic recovered: %v", id, r)
			if task.BotInstance != nil && task.Update != nil && task.Update.Message != nil {
				_, _ = task.BotInstance.SendMessage(task.Ctx, &bot.SendMessageParams{
					ChatID: task.Update.Message.Chat.ID,
					Text:   "❌ Internal error, please try again later.",
				})
			}
		}
		p.completed.Add(1)
	}()

	task.Handler(task.Ctx, task.BotInstance, task.Update)
}

// Submit 提交任务到工作池，队列已满或已关闭时丢弃
func (p *WorkerPool) Submit(task HandlerTask) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.dropped.Add(1)
		logger.L().Warn("Worker pool is shut down, task dropped")
		return false
	}

	select {
	case p.taskQueue <- task:
		return true
	default:
		p.dropped.Add(1)
		logger.L().Warnf("Worker pool queue is full, task dropped")
		return false
	}
}

// Stats 返回当前计数
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		Workers:   p.workers,
		Queued:    len(p.taskQueue),
		Completed: p.completed.Load(),
		Dropped:   p.dropped.Load(),
		Panics:    p.panics.Load(),
	}
}

// Shutdown 优雅关闭工作池
// 等待所有已排队的任务完成，可重复调用
func (p *WorkerPool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.taskQueue)
	p.mu.Unlock()

	logger.L().Info("Shutting down worker pool...")
	p.wg.Wait()
	logger.L().Info("Worker pool shut down successfully")
}
