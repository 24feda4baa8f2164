package transport

import "time"

// Config 直连连接器配置
type Config struct {
	// DialTimeout 单个地址的 TCP 拨号超时，0 表示只受 ctx 约束
	DialTimeout time.Duration

	// HandshakeTimeout TLS 握手超时，0 表示只受 ctx 约束
	HandshakeTimeout time.Duration

	// KeepAlive TCP keep-alive 间隔
	KeepAlive time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		DialTimeout:      0,
		HandshakeTimeout: 0,
		KeepAlive:        30 * time.Second,
	}
}
