package config

import "time"

// TransportConfig 拨号配置
type TransportConfig struct {
	// DialTimeout 单个地址的 TCP 拨号超时，0 表示只受尝试超时约束
	DialTimeout Duration `json:"dial_timeout" koanf:"dial_timeout"`

	// HandshakeTimeout TLS 握手超时，0 表示只受尝试超时约束
	HandshakeTimeout Duration `json:"handshake_timeout" koanf:"handshake_timeout"`

	// KeepAlive TCP keep-alive 间隔
	KeepAlive Duration `json:"keep_alive" koanf:"keep_alive"`
}

// DefaultTransportConfig 返回默认拨号配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		KeepAlive: Duration(30 * time.Second),
	}
}

// Validate 验证拨号配置
func (c TransportConfig) Validate() error {
	if c.DialTimeout < 0 {
		return invalid("transport.dial_timeout", c.DialTimeout)
	}
	if c.HandshakeTimeout < 0 {
		return invalid("transport.handshake_timeout", c.HandshakeTimeout)
	}
	return nil
}
