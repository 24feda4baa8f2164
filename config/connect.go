package config

import "time"

// ConnectConfig 单路由节流配置
type ConnectConfig struct {
	// AttemptTimeout 单条路由一次尝试的超时
	AttemptTimeout Duration `json:"attempt_timeout" koanf:"attempt_timeout"`

	// FailureThreshold 连续失败多少次后进入冷却
	FailureThreshold int `json:"failure_threshold" koanf:"failure_threshold"`

	// BaseCooldown 首次冷却时长
	BaseCooldown Duration `json:"base_cooldown" koanf:"base_cooldown"`

	// MaxCooldown 冷却上限
	MaxCooldown Duration `json:"max_cooldown" koanf:"max_cooldown"`
}

// DefaultConnectConfig 返回默认连接配置
func DefaultConnectConfig() ConnectConfig {
	return ConnectConfig{
		AttemptTimeout:   Duration(5 * time.Second),
		FailureThreshold: 2,
		BaseCooldown:     Duration(2 * time.Second),
		MaxCooldown:      Duration(64 * time.Second),
	}
}

// Validate 验证连接配置
func (c ConnectConfig) Validate() error {
	if c.AttemptTimeout <= 0 {
		return invalid("connect.attempt_timeout", c.AttemptTimeout)
	}
	if c.FailureThreshold <= 0 {
		return invalid("connect.failure_threshold", c.FailureThreshold)
	}
	if c.BaseCooldown <= 0 || c.MaxCooldown < c.BaseCooldown {
		return invalid("connect.max_cooldown", c.MaxCooldown)
	}
	return nil
}
