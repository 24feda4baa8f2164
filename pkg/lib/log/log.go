// Package log 提供 chatnet 统一日志接口
//
// 基于 Go 标准库 log/slog 封装，提供简洁的日志 API。
// 各组件通过 log.Logger("core/dns") 获取带组件名的懒加载 logger。
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// SetDefault 设置默认 logger
func SetDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

// Default 返回默认 logger
func Default() *slog.Logger {
	return slog.Default()
}

// SetOutput 设置日志输出目标
//
// 重新创建默认 logger，保留当前的全局级别和组件级别配置。
func SetOutput(w io.Writer) {
	cfg := currentConfig()
	cfg.Output = w
	Setup(cfg)
}

// SetLevel 设置全局日志级别
func SetLevel(level slog.Level) {
	cfg := currentConfig()
	cfg.Level = level
	Setup(cfg)
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时都从 slog.Default() 获取最新的 handler，
// 支持在运行时动态切换日志输出目标。
//
// 使用方式：
//
//	var logger = log.Logger("core/connmgr")
//	logger.Info("路由连接成功", "route", "direct")
type LazyLogger struct {
	component string
}

func (l *LazyLogger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !componentEnabled(l.component, level) {
		return
	}
	slog.Default().With("component", l.component).Log(ctx, level, msg, args...)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	l.log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	l.log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	l.log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	l.log(context.Background(), slog.LevelError, msg, args...)
}

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelDebug, msg, args...)
}

// InfoContext 带 context 的 Info 日志
func (l *LazyLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, msg, args...)
}

// WarnContext 带 context 的 Warn 日志
func (l *LazyLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, msg, args...)
}

// With 添加额外的属性
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return slog.Default().With("component", l.component).With(args...)
}

// Component 返回组件名
func (l *LazyLogger) Component() string {
	return l.component
}

// Logger 返回带组件名的 LazyLogger
//
// 返回的 LazyLogger 会在每次日志调用时使用当前的 slog.Default()，
// 支持在运行时动态切换日志输出目标。
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

// ============================================================================
//                              初始化
// ============================================================================

func init() {
	Setup(ConfigFromEnv(os.Getenv))
}
