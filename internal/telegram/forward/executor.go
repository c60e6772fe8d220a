package forward

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"relay_bot/internal/logger"
	"relay_bot/internal/telegram/models"
)

const (
	// DefaultForwardDelay 确认后开始转发前的等待时间
	DefaultForwardDelay = 30 * time.Second

	forwardAttemptTimeout = 15 * time.Second
)

// OutcomeStatus 单个目标频道的结果
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
)

// ForwardOutcome 单个目标频道的处理结果
type ForwardOutcome struct {
	Destination string
	Status      OutcomeStatus
	Attempts    int
	Err         error
}

// Summary 一次转发任务的汇总，列表保持目标频道的配置顺序
type Summary struct {
	TaskID    string
	Succeeded []string
	Failed    []string
	Outcomes  []ForwardOutcome
}

// RecordStore 转发结果审计存储
type RecordStore interface {
	BulkCreateRecords(ctx context.Context, records []*models.ForwardRecord) error
}

// ExecutorOptions 转发执行器的可选依赖
type ExecutorOptions struct {
	RatePerSecond int           // 转发限速（<=0 不限速）
	Records       RecordStore   // 可选，审计记录
	Delay         time.Duration // 零值使用 DefaultForwardDelay
	RetryDelay    time.Duration // 零值使用 DefaultRetryDelay
}

// Executor 在固定延迟后将消息依次转发到所有目标频道
type Executor struct {
	transport    Transport
	destinations []string
	limiter      *rate.Limiter
	records      RecordStore

	delay       time.Duration
	retryDelay  time.Duration
	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time
	newTaskID   func() string
}

// NewExecutor 创建转发执行器
func NewExecutor(transport Transport, destinations []string, opts ExecutorOptions) *Executor {
	e := &Executor{
		transport:    transport,
		destinations: append([]string(nil), destinations...),
		records:      opts.Records,
		delay:        DefaultForwardDelay,
		retryDelay:   DefaultRetryDelay,
		maxAttempts:  MaxForwardAttempts,
		sleep:        sleepContext,
		now:          time.Now,
		newTaskID:    func() string { return uuid.New().String() },
	}
	if opts.Delay > 0 {
		e.delay = opts.Delay
	}
	if opts.RetryDelay > 0 {
		e.retryDelay = opts.RetryDelay
	}
	if opts.RatePerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.RatePerSecond)
	}
	return e
}

// Destinations 配置的目标频道（副本）
func (e *Executor) Destinations() []string {
	return append([]string(nil), e.destinations...)
}

// Execute 执行已确认的转发请求
//
// 单个目标频道失败不会中断其他频道；只有状态消息发送/编辑失败会作为错误返回。
func (e *Executor) Execute(ctx context.Context, req PendingForward, status MessageRef) (Summary, error) {
	summary := Summary{TaskID: e.newTaskID()}
	reporter := NewProgressReporter(e.transport, status)
	log := logger.L().WithFields(logrus.Fields{
		"task_id":     summary.TaskID,
		"source_chat": req.SourceChatID,
		"source_msg":  req.SourceMessageID,
		"user_id":     req.RequestedBy,
	})

	notice := fmt.Sprintf("Forwarding message in %d seconds...", int(e.delay.Round(time.Second)/time.Second))
	if err := reporter.Notice(ctx, notice); err != nil {
		return summary, err
	}

	log.Infof("Forward scheduled in %v to %d destination(s)", e.delay, len(e.destinations))
	if err := e.sleep(ctx, e.delay); err != nil {
		return summary, fmt.Errorf("forward delay interrupted: %w", err)
	}

	total := len(e.destinations)
	if err := reporter.Start(ctx, total); err != nil {
		return summary, err
	}

	startTime := e.now()
	for i, destination := range e.destinations {
		outcome := e.forwardToDestination(ctx, req, destination)
		summary.Outcomes = append(summary.Outcomes, outcome)

		if outcome.Status == OutcomeSuccess {
			summary.Succeeded = append(summary.Succeeded, destination)
			log.WithField("destination", destination).Debugf("Forwarded after %d attempt(s)", outcome.Attempts)
		} else {
			summary.Failed = append(summary.Failed, destination)
			log.WithField("destination", destination).Errorf("Forward failed: %v", outcome.Err)
		}

		if err := reporter.Report(ctx, i+1, total); err != nil {
			return summary, err
		}
	}

	if err := reporter.Finish(ctx, summary); err != nil {
		return summary, err
	}

	log.Infof("Forward task completed: success=%d, failed=%d, duration=%v",
		len(summary.Succeeded), len(summary.Failed), e.now().Sub(startTime))

	e.saveRecords(ctx, req, summary)
	return summary, nil
}

// forwardToDestination 转发到单个目标频道（带重试）
func (e *Executor) forwardToDestination(ctx context.Context, req PendingForward, destination string) ForwardOutcome {
	target := destination
	var lastErr error
	attempt := 0

	for attempt < e.maxAttempts {
		attempt++

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				lastErr = fmt.Errorf("rate limiter wait error: %w", err)
				break
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, forwardAttemptTimeout)
		err := e.transport.ForwardMessage(attemptCtx, target, req.SourceChatID, req.SourceMessageID)
		cancel()

		if err == nil {
			return ForwardOutcome{Destination: destination, Status: OutcomeSuccess, Attempts: attempt}
		}
		lastErr = err

		if newChatID, ok := migrateToChatIDFromError(err); ok {
			logger.L().Warnf("Destination %s migrated to chat %d, redirecting", destination, newChatID)
			target = strconv.FormatInt(newChatID, 10)
			continue
		}

		if !shouldRetryForward(err) || ctx.Err() != nil {
			break
		}

		if attempt < e.maxAttempts {
			delay := forwardRetryDelay(err, e.retryDelay)
			logger.L().Warnf("Forward attempt %d failed for %s: %v, retrying in %v", attempt, destination, err, delay)
			if err := e.sleep(ctx, delay); err != nil {
				lastErr = fmt.Errorf("retry wait interrupted: %w", err)
				break
			}
		}
	}

	return ForwardOutcome{
		Destination: destination,
		Status:      OutcomeFailure,
		Attempts:    attempt,
		Err:         &ForwardError{Destination: destination, Attempts: attempt, Err: lastErr},
	}
}

// saveRecords 写入审计记录，失败只记录日志
func (e *Executor) saveRecords(ctx context.Context, req PendingForward, summary Summary) {
	if e.records == nil || len(summary.Outcomes) == 0 {
		return
	}

	createdAt := e.now()
	records := make([]*models.ForwardRecord, 0, len(summary.Outcomes))
	for _, outcome := range summary.Outcomes {
		record := &models.ForwardRecord{
			TaskID:          summary.TaskID,
			SourceChatID:    req.SourceChatID,
			SourceMessageID: int64(req.SourceMessageID),
			RequestedBy:     req.RequestedBy,
			Destination:     outcome.Destination,
			Status:          models.ForwardStatusSuccess,
			Attempts:        outcome.Attempts,
			CreatedAt:       createdAt,
		}
		if outcome.Status != OutcomeSuccess {
			record.Status = models.ForwardStatusFailed
			if outcome.Err != nil {
				record.Error = outcome.Err.Error()
			}
		}
		records = append(records, record)
	}

	if err := e.records.BulkCreateRecords(ctx, records); err != nil {
		logger.L().Errorf("Failed to save forward records for task %s: %v", summary.TaskID, err)
	}
}
