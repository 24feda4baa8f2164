package config

// IntrospectConfig 本地自省服务配置
type IntrospectConfig struct {
	// Enabled 是否启用
	Enabled bool `json:"enabled" koanf:"enabled"`

	// Addr 监听地址，只应绑定本地地址
	Addr string `json:"addr" koanf:"addr"`
}

// DefaultIntrospectConfig 返回默认自省配置
func DefaultIntrospectConfig() IntrospectConfig {
	return IntrospectConfig{
		Enabled: false,
		Addr:    "127.0.0.1:6060",
	}
}

// Validate 验证自省配置
func (c IntrospectConfig) Validate() error {
	if c.Enabled && c.Addr == "" {
		return invalid("introspect.addr", c.Addr)
	}
	return nil
}
