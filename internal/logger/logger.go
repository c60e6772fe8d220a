package logger

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options 日志输出配置
type Options struct {
	Level      string // 日志级别（默认 info）
	File       string // 可选的日志文件路径，留空则只输出到 stdout
	MaxSizeMB  int    // 单个日志文件最大尺寸（MB）
	MaxBackups int    // 保留的旧日志文件数量
	MaxAgeDays int    // 旧日志文件保留天数
}

// Init configures the global logrus logger.
// It is safe to call multiple times; later calls overwrite previous settings.
func Init(opts Options) {
	log.SetOutput(newWriter(opts))
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(parseLevel(opts.Level))
}

// L returns the global logger for convenience.
func L() *log.Logger { return log.StandardLogger() }

func parseLevel(levelStr string) log.Level {
	if levelStr == "" {
		levelStr = "info"
	}
	if lvl, err := log.ParseLevel(levelStr); err == nil {
		return lvl
	}
	return log.InfoLevel
}

// newWriter 同时输出到 stdout 与滚动日志文件
func newWriter(opts Options) io.Writer {
	if opts.File == "" {
		return os.Stdout
	}

	rotating := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
	return io.MultiWriter(os.Stdout, rotating)
}
