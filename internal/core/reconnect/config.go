package reconnect

import (
	"time"
)

// Config 重连服务配置
type Config struct {
	// Name 服务名称，用于日志与指标
	// 默认值: "chat"
	Name string

	// Cooldown 可重试失败后的默认冷却时长
	// 默认值: 5s
	Cooldown time.Duration

	// ConnectTimeout 一轮连接（遍历所有路由）的总超时
	// 默认值: 20s
	ConnectTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Name:           "chat",
		Cooldown:       5 * time.Second,
		ConnectTimeout: 20 * time.Second,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.Name == "" || c.Cooldown <= 0 || c.ConnectTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}
