package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 环境变量
const (
	// EnvLevel 日志级别配置
	//   格式: 组件=级别,组件=级别,默认级别
	//   示例: core/dns=debug,core/connmgr=warn,info
	EnvLevel = "CHATNET_LOG_LEVEL"

	// EnvFormat 日志格式 (text 或 json)
	EnvFormat = "CHATNET_LOG_FORMAT"
)

// Format 日志输出格式
type Format int

const (
	// FormatText 文本格式（默认）
	FormatText Format = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// Config 日志配置
type Config struct {
	// Level 默认日志级别
	Level slog.Level

	// Components 各组件的日志级别，未列出的组件使用 Level
	Components map[string]slog.Level

	// Format 输出格式
	Format Format

	// Output 输出目标，nil 表示 stderr
	Output io.Writer
}

var (
	activeMu  sync.RWMutex
	activeCfg = Config{Level: slog.LevelInfo}
)

// LevelFor 获取指定组件的日志级别
func (c Config) LevelFor(component string) slog.Level {
	if lvl, ok := c.Components[component]; ok {
		return lvl
	}
	return c.Level
}

// minLevel 返回所有配置中最低的级别，作为底层 handler 的门槛
func (c Config) minLevel() slog.Level {
	lowest := c.Level
	for _, lvl := range c.Components {
		if lvl < lowest {
			lowest = lvl
		}
	}
	return lowest
}

// Setup 按配置安装默认 logger
func Setup(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.minLevel()}

	var h slog.Handler
	if cfg.Format == FormatJSON {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}

	comps := make(map[string]slog.Level, len(cfg.Components))
	for k, v := range cfg.Components {
		comps[k] = v
	}
	cfg.Components = comps

	activeMu.Lock()
	activeCfg = cfg
	activeMu.Unlock()
	slog.SetDefault(slog.New(h))
}

func currentConfig() Config {
	activeMu.RLock()
	defer activeMu.RUnlock()
	return activeCfg
}

func componentEnabled(component string, level slog.Level) bool {
	activeMu.RLock()
	defer activeMu.RUnlock()
	return level >= activeCfg.LevelFor(component)
}

// ConfigFromEnv 从环境变量解析配置
//
// getenv 通常为 os.Getenv，测试中可替换。
func ConfigFromEnv(getenv func(string) string) Config {
	cfg := Config{
		Level:      slog.LevelInfo,
		Components: make(map[string]slog.Level),
	}
	if spec := getenv(EnvLevel); spec != "" {
		ParseLevelSpec(&cfg, spec)
	}
	if strings.EqualFold(getenv(EnvFormat), "json") {
		cfg.Format = FormatJSON
	}
	return cfg
}

// ParseLevelSpec 解析日志级别配置字符串
//
// 格式: 组件=级别,组件=级别,默认级别；无法识别的片段被忽略。
func ParseLevelSpec(cfg *Config, spec string) {
	if cfg.Components == nil {
		cfg.Components = make(map[string]slog.Level)
	}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if name, lvl, ok := strings.Cut(part, "="); ok {
			if level, ok := ParseLevel(strings.TrimSpace(lvl)); ok {
				cfg.Components[strings.TrimSpace(name)] = level
			}
			continue
		}
		if level, ok := ParseLevel(part); ok {
			cfg.Level = level
		}
	}
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
