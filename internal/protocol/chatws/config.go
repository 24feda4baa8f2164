package chatws

import (
	"errors"
	"strings"
	"time"
)

// 默认值
const (
	// DefaultEndpoint 聊天 WebSocket 路径
	DefaultEndpoint = "/v1/websocket/"

	// DefaultKeepAliveInterval 保活 ping 间隔
	DefaultKeepAliveInterval = 30 * time.Second

	// DefaultMaxIdleTime 最长无入站数据时间
	DefaultMaxIdleTime = 60 * time.Second
)

// ErrInvalidConfig 配置无效
var ErrInvalidConfig = errors.New("chatws: invalid config")

// Config WebSocket 连接器配置
type Config struct {
	// Endpoint 路径与查询串，必须以 / 开头
	Endpoint string

	// HandshakeTimeout 升级握手超时
	// 默认值: 5s
	HandshakeTimeout time.Duration

	// KeepAliveInterval 保活 ping 间隔
	KeepAliveInterval time.Duration

	// MaxIdleTime 最长无入站数据时间，超过即结束会话
	MaxIdleTime time.Duration

	// WriteTimeout 单次写超时
	// 默认值: 5s
	WriteTimeout time.Duration

	// IncomingBuffer 入站消息缓冲
	// 默认值: 16
	IncomingBuffer int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Endpoint:          DefaultEndpoint,
		HandshakeTimeout:  5 * time.Second,
		KeepAliveInterval: DefaultKeepAliveInterval,
		MaxIdleTime:       DefaultMaxIdleTime,
		WriteTimeout:      5 * time.Second,
		IncomingBuffer:    16,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	switch {
	case !strings.HasPrefix(c.Endpoint, "/"):
		return ErrInvalidConfig
	case c.HandshakeTimeout <= 0, c.WriteTimeout <= 0:
		return ErrInvalidConfig
	case c.KeepAliveInterval <= 0, c.MaxIdleTime <= c.KeepAliveInterval:
		return ErrInvalidConfig
	case c.IncomingBuffer < 0:
		return ErrInvalidConfig
	}
	return nil
}
