package netmon

import (
	"errors"
	"time"
)

// ErrInvalidConfig 无效配置
var ErrInvalidConfig = errors.New("netmon: invalid config")

// Config 网络监听配置
type Config struct {
	// Enabled 是否启用轮询
	Enabled bool

	// PollInterval 轮询间隔
	// 默认值: 5s
	PollInterval time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		PollInterval: 5 * time.Second,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.Enabled && c.PollInterval <= 0 {
		return ErrInvalidConfig
	}
	return nil
}
