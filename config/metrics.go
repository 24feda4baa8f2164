package config

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否暴露 /metrics 端点
	Enabled bool `json:"enabled" koanf:"enabled"`

	// ListenAddr 监听地址
	ListenAddr string `json:"listen_addr" koanf:"listen_addr"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:    false,
		ListenAddr: "127.0.0.1:9464",
	}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	if c.Enabled && c.ListenAddr == "" {
		return invalid("metrics.listen_addr", c.ListenAddr)
	}
	return nil
}
