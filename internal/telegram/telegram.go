package telegram

import (
	"context"
	"fmt"
	"time"

	"relay_bot/internal/config"
	"relay_bot/internal/logger"
	"relay_bot/internal/telegram/forward"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
)

// Config Telegram Bot 配置
type Config struct {
	Token             string   // Bot Token
	Destinations      []string // 目标频道（有序）
	AuthorizedUsers   []string // 允许转发的用户名
	ForwardRatePerSec int      // 转发限速
	WorkerPoolSize    int      // handler 协程数量
	WorkerQueueSize   int      // handler 队列长度
	Debug             bool     // 是否开启调试模式
}

// Deps 可替换的外部依赖
type Deps struct {
	Limiter      forward.RateLimiter // 为空时使用进程内冷却表
	Records      forward.RecordStore // 为空时不写审计记录
	Tasks        TaskLookup          // 为空时 /task 不可用
	HealthChecks []HealthCheck       // /ping 展示的依赖检查
}

// Bot Telegram Bot 服务
type Bot struct {
	bot          *bot.Bot
	forward      *forward.Service
	authorizer   *forward.Authorizer
	workerPool   *WorkerPool
	destinations []string
	tasks        TaskLookup
	healthChecks []HealthCheck
	startTime    time.Time
}

// New 创建 Telegram Bot 实例
func New(cfg Config, deps Deps) (*Bot, error) {
	// 验证配置
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token cannot be empty")
	}
	if len(cfg.Destinations) == 0 {
		return nil, fmt.Errorf("at least one forward destination is required")
	}

	// 创建 bot 实例
	opts := []bot.Option{
		bot.WithDefaultHandler(defaultHandler),
		bot.WithErrorsHandler(func(err error) {
			logger.L().Errorf("Telegram polling error: %v", err)
		}),
	}
	if cfg.Debug {
		opts = append(opts, bot.WithDebug())
	}

	b, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	limiter := deps.Limiter
	if limiter == nil {
		limiter = forward.NewMemoryRateLimiter(forward.DefaultCooldown)
	}

	transport := newBotTransport(b)
	executor := forward.NewExecutor(transport, cfg.Destinations, forward.ExecutorOptions{
		RatePerSecond: cfg.ForwardRatePerSec,
		Records:       deps.Records,
	})

	authorizer := forward.NewAuthorizer(cfg.AuthorizedUsers)
	telegramBot := &Bot{
		bot:          b,
		forward:      forward.NewService(transport, authorizer, limiter, executor),
		authorizer:   authorizer,
		workerPool:   NewWorkerPool(cfg.WorkerPoolSize, cfg.WorkerQueueSize),
		destinations: executor.Destinations(),
		tasks:        deps.Tasks,
		healthChecks: deps.HealthChecks,
	}

	// 注册 handlers
	telegramBot.registerHandlers()

	logger.L().Infof("Telegram bot initialized: destinations=%v, authorized_users=%d",
		cfg.Destinations, len(cfg.AuthorizedUsers))
	return telegramBot, nil
}

// InitFromConfig 从应用配置初始化 Telegram Bot
func InitFromConfig(cfg *config.Config, deps Deps) (*Bot, error) {
	telegramCfg := Config{
		Token:             cfg.TelegramToken,
		Destinations:      cfg.Destinations,
		AuthorizedUsers:   cfg.AuthorizedUsers,
		ForwardRatePerSec: cfg.ForwardRatePerSec,
		WorkerPoolSize:    cfg.WorkerPoolSize,
		WorkerQueueSize:   cfg.WorkerQueueSize,
		Debug:             cfg.Log.Level == "trace",
	}
	return New(telegramCfg, deps)
}

// Start 启动 Bot（阻塞直到 ctx 取消）
func (b *Bot) Start(ctx context.Context) error {
	logger.L().Info("Starting Telegram bot...")
	b.startTime = time.Now()
	b.bot.Start(ctx)
	logger.L().Infof("Telegram bot stopped after %v", time.Since(b.startTime).Round(time.Second))
	return nil
}

// Stop 停止 Bot
// polling 通过 ctx 取消停止，这里关闭工作池
func (b *Bot) Stop(ctx context.Context) error {
	logger.L().Info("Stopping Telegram bot...")
	b.workerPool.Shutdown()
	return nil
}

// defaultHandler 未匹配的更新直接忽略
func defaultHandler(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	logger.L().Debugf("Ignoring unhandled update %d", update.ID)
}
