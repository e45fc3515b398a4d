// Package log 提供全局的分级 key=value 日志，底层使用 log/slog 文本格式
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level 日志级别
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	mu       sync.RWMutex
	level    = new(slog.LevelVar)
	logger   *slog.Logger
	initOnce sync.Once
)

func initLogger() {
	initOnce.Do(func() {
		level.Set(slog.LevelInfo)
		logger = newLogger(os.Stderr)
	})
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel 解析日志级别，不区分大小写
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug, nil
	case LevelInfo, "":
		return LevelInfo, nil
	case LevelWarn, "WARNING":
		return LevelWarn, nil
	case LevelError:
		return LevelError, nil
	}
	return "", fmt.Errorf("未知的日志级别 '%s'", s)
}

// SetLevel 设置最低输出级别
func SetLevel(l Level) {
	initLogger()
	level.Set(toSlog(l))
}

// SetOutput 设置日志输出位置；TUI运行时日志写入文件或丢弃
func SetOutput(w io.Writer) {
	initLogger()
	if w == nil {
		w = io.Discard
	}
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

// Debug 输出调试日志
func Debug(msg string, kv ...any) {
	logWithLevel(LevelDebug, msg, kv...)
}

// Info 输出普通日志
func Info(msg string, kv ...any) {
	logWithLevel(LevelInfo, msg, kv...)
}

// Warn 输出警告日志
func Warn(msg string, kv ...any) {
	logWithLevel(LevelWarn, msg, kv...)
}

// Error 输出错误日志，err作为第一个字段
func Error(msg string, err error, kv ...any) {
	extended := append([]any{"err", err}, kv...)
	logWithLevel(LevelError, msg, extended...)
}

func logWithLevel(l Level, msg string, kv ...any) {
	initLogger()
	mu.RLock()
	current := logger
	mu.RUnlock()

	// 奇数个参数时忽略最后一个，与 key=value 约定保持一致
	if len(kv)%2 == 1 {
		kv = kv[:len(kv)-1]
	}
	current.Log(context.Background(), toSlog(l), msg, kv...)
}

func toSlog(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
