package config

import "time"

// ReconnectConfig 重连配置
type ReconnectConfig struct {
	// Cooldown 可重试失败后的默认冷却时长
	Cooldown Duration `json:"cooldown" koanf:"cooldown"`

	// ConnectTimeout 一轮连接（遍历所有路由）的总超时
	ConnectTimeout Duration `json:"connect_timeout" koanf:"connect_timeout"`
}

// DefaultReconnectConfig 返回默认重连配置
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		Cooldown:       Duration(5 * time.Second),
		ConnectTimeout: Duration(20 * time.Second),
	}
}

// Validate 验证重连配置
func (c ReconnectConfig) Validate() error {
	if c.Cooldown <= 0 {
		return invalid("reconnect.cooldown", c.Cooldown)
	}
	if c.ConnectTimeout <= 0 {
		return invalid("reconnect.connect_timeout", c.ConnectTimeout)
	}
	return nil
}
