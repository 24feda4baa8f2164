package connmgr

import (
	"time"
)

// Config 单路由管理器配置
type Config struct {
	// AttemptTimeout 单次尝试超时
	// 默认值: 5s
	AttemptTimeout time.Duration

	// FailureThreshold 连续可重试失败达到该次数后进入冷却
	// 默认值: 2
	FailureThreshold int

	// BaseCooldown 首次冷却时长，之后每次失败翻倍
	// 默认值: 2s
	BaseCooldown time.Duration

	// MaxCooldown 冷却时长上限
	// 默认值: 64s
	MaxCooldown time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		AttemptTimeout:   5 * time.Second,
		FailureThreshold: 2,
		BaseCooldown:     2 * time.Second,
		MaxCooldown:      64 * time.Second,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.AttemptTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.FailureThreshold <= 0 {
		return ErrInvalidConfig
	}
	if c.BaseCooldown <= 0 || c.MaxCooldown < c.BaseCooldown {
		return ErrInvalidConfig
	}
	return nil
}

// maxShift 防止移位溢出
const maxShift = 30

// CooldownFor 返回连续失败 failures 次后的冷却时长
//
//	failures < threshold          → 0
//	failures >= threshold         → min(base * 2^(failures-threshold), max)
func (c Config) CooldownFor(failures int) time.Duration {
	if failures < c.FailureThreshold {
		return 0
	}
	shift := failures - c.FailureThreshold
	if shift > maxShift {
		return c.MaxCooldown
	}
	d := c.BaseCooldown << shift
	if d <= 0 || d > c.MaxCooldown {
		return c.MaxCooldown
	}
	return d
}
