package config

import "time"

// NetMonConfig 网络变化检测配置
type NetMonConfig struct {
	// Enabled 是否轮询网络接口
	Enabled bool `json:"enabled" koanf:"enabled"`

	// PollInterval 轮询间隔
	PollInterval Duration `json:"poll_interval" koanf:"poll_interval"`
}

// DefaultNetMonConfig 返回默认网络监视配置
func DefaultNetMonConfig() NetMonConfig {
	return NetMonConfig{
		Enabled:      true,
		PollInterval: Duration(5 * time.Second),
	}
}

// Validate 验证网络监视配置
func (c NetMonConfig) Validate() error {
	if c.Enabled && c.PollInterval <= 0 {
		return invalid("netmon.poll_interval", c.PollInterval)
	}
	return nil
}
