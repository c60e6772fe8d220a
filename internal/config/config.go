package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config 应用程序配置
type Config struct {
	TelegramToken     string   `envconfig:"TELEGRAM_TOKEN" required:"true"`       // Telegram Bot API Token
	Destinations      []string `envconfig:"FORWARD_DESTINATIONS" required:"true"` // 目标频道（有序）
	AuthorizedUsers   []string `envconfig:"AUTHORIZED_USERNAMES"`                 // 允许转发的用户名
	ForwardRatePerSec int      `envconfig:"FORWARD_RATE_PER_SECOND" default:"20"` // 转发限速
	WorkerPoolSize    int      `envconfig:"WORKER_POOL_SIZE" default:"16"`        // handler 协程数量
	WorkerQueueSize   int      `envconfig:"WORKER_QUEUE_SIZE" default:"256"`      // handler 队列长度
	MongoURI          string   `envconfig:"MONGO_URI"`                            // 可选，转发审计记录
	MongoDBName       string   `envconfig:"MONGO_DB_NAME" default:"relay_bot"`    // MongoDB 数据库名称
	RedisAddr         string   `envconfig:"REDIS_ADDR"`                           // 可选，共享冷却状态
	RedisPassword     string   `envconfig:"REDIS_PASSWORD"`                       // Redis 密码
	RedisDB           int      `envconfig:"REDIS_DB" default:"0"`                 // Redis 库编号
	Log               LogConfig
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	File       string `envconfig:"LOG_FILE"`
	MaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"20"`
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"5"`
	MaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"14"`
}

// Load 从 .env 文件与环境变量加载配置
func Load() (*Config, error) {
	// .env 不存在时直接读取环境变量
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize 校验并规范化配置
func (c *Config) normalize() error {
	c.TelegramToken = strings.TrimSpace(c.TelegramToken)
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN cannot be empty")
	}

	destinations, err := parseDestinations(c.Destinations)
	if err != nil {
		return err
	}
	c.Destinations = destinations

	c.AuthorizedUsers = parseUsernames(c.AuthorizedUsers)

	if c.ForwardRatePerSec < 1 {
		return fmt.Errorf("FORWARD_RATE_PER_SECOND must be >= 1, got %d", c.ForwardRatePerSec)
	}
	if c.WorkerPoolSize < 1 {
		return fmt.Errorf("WORKER_POOL_SIZE must be >= 1, got %d", c.WorkerPoolSize)
	}
	if c.WorkerQueueSize < 1 {
		return fmt.Errorf("WORKER_QUEUE_SIZE must be >= 1, got %d", c.WorkerQueueSize)
	}

	c.MongoURI = strings.TrimSpace(c.MongoURI)
	c.RedisAddr = strings.TrimSpace(c.RedisAddr)
	return nil
}

// parseDestinations 保留配置顺序，拒绝空值与重复值
// 支持格式: "@channel" 或 "-1001234567890"
func parseDestinations(raw []string) ([]string, error) {
	result := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			return nil, fmt.Errorf("duplicate destination %q in FORWARD_DESTINATIONS", item)
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("FORWARD_DESTINATIONS must contain at least one channel")
	}
	return result, nil
}

// parseUsernames 去掉 @ 前缀并统一小写
func parseUsernames(raw []string) []string {
	result := make([]string, 0, len(raw))
	for _, item := range raw {
		item = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(item), "@"))
		if item == "" {
			continue
		}
		result = append(result, item)
	}
	return result
}
