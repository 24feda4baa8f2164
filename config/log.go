package config

import (
	"github.com/dep2p/go-chatnet/pkg/lib/log"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 级别规格，如 "info" 或 "info,core/dns=debug"
	Level string `json:"level" koanf:"level"`

	// Format 输出格式（text/json）
	Format string `json:"format" koanf:"format"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	switch c.Format {
	case "", "text", "json":
	default:
		return invalid("log.format", c.Format)
	}
	return nil
}

// Apply 按配置设置全局日志
func (c LogConfig) Apply() {
	cfg := log.ConfigFromEnv(func(string) string { return "" })
	log.ParseLevelSpec(&cfg, c.Level)
	if c.Format == "json" {
		cfg.Format = log.FormatJSON
	}
	log.Setup(cfg)
}
