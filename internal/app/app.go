package app

import (
	"context"
	"fmt"
	"time"

	"relay_bot/internal/config"
	"relay_bot/internal/logger"
	"relay_bot/internal/mongo"
	"relay_bot/internal/redis"
	"relay_bot/internal/telegram"
	"relay_bot/internal/telegram/forward"
	"relay_bot/internal/telegram/repository"
)

// App 应用服务容器
// 负责管理所有服务的生命周期（初始化、运行、关闭）
type App struct {
	MongoDB     *mongo.Client
	Redis       *redis.Client
	TelegramBot *telegram.Bot
}

// New 初始化应用及其所有服务
// 按顺序初始化各个服务，任何服务初始化失败都会清理已初始化的服务并返回错误
func New(cfg *config.Config) (*App, error) {
	app := &App{}
	deps := telegram.Deps{}

	// MongoDB（可选）：转发审计记录
	mongoClient, err := mongo.InitFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init MongoDB failed: %w", err)
	}
	if mongoClient != nil {
		app.MongoDB = mongoClient

		records := repository.NewForwardRecordRepository(mongoClient.Database())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = records.EnsureIndexes(ctx)
		cancel()
		if err != nil {
			app.Close(context.Background())
			return nil, fmt.Errorf("ensure forward record indexes failed: %w", err)
		}
		deps.Records = records
		deps.Tasks = records
		deps.HealthChecks = append(deps.HealthChecks, telegram.HealthCheck{Name: "MongoDB", Ping: mongoClient.Ping})
		logger.L().Info("MongoDB initialized successfully")
	} else {
		logger.L().Info("MONGO_URI not set, forward records are disabled")
	}

	// Redis（可选）：多实例共享冷却状态
	redisClient, err := redis.InitFromConfig(cfg)
	if err != nil {
		app.Close(context.Background())
		return nil, fmt.Errorf("init Redis failed: %w", err)
	}
	if redisClient != nil {
		app.Redis = redisClient
		deps.Limiter = redisClient.CooldownStore(forward.DefaultCooldown)
		deps.HealthChecks = append(deps.HealthChecks, telegram.HealthCheck{Name: "Redis", Ping: redisClient.Ping})
		logger.L().Info("Redis initialized successfully")
	} else {
		logger.L().Info("REDIS_ADDR not set, using in-memory cooldown")
	}

	app.TelegramBot, err = telegram.InitFromConfig(cfg, deps)
	if err != nil {
		app.Close(context.Background())
		return nil, fmt.Errorf("init Telegram bot failed: %w", err)
	}

	return app, nil
}

// Run 运行 Bot，阻塞直到 ctx 取消
func (a *App) Run(ctx context.Context) error {
	return a.TelegramBot.Start(ctx)
}

// Close 优雅关闭所有服务
// 应该在应用退出时调用，确保资源正确释放
func (a *App) Close(ctx context.Context) error {
	var firstErr error

	if a.TelegramBot != nil {
		if err := a.TelegramBot.Stop(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop Telegram bot failed: %w", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close Redis failed: %w", err)
		}
	}
	if a.MongoDB != nil {
		if err := a.MongoDB.Close(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close MongoDB failed: %w", err)
		}
	}
	return firstErr
}
