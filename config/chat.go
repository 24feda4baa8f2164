package config

import (
	"strings"
	"time"

	"github.com/dep2p/go-chatnet/pkg/types"
)

// ChatConfig 聊天 WebSocket 配置
type ChatConfig struct {
	// Endpoint WebSocket 路径
	Endpoint string `json:"endpoint" koanf:"endpoint"`

	// HandshakeTimeout 升级握手超时
	HandshakeTimeout Duration `json:"handshake_timeout" koanf:"handshake_timeout"`

	// KeepAliveInterval 保活 ping 间隔
	KeepAliveInterval Duration `json:"keep_alive_interval" koanf:"keep_alive_interval"`

	// MaxIdleTime 最长无入站数据时间
	MaxIdleTime Duration `json:"max_idle_time" koanf:"max_idle_time"`

	// WriteTimeout 单次写超时
	WriteTimeout Duration `json:"write_timeout" koanf:"write_timeout"`

	// IncomingBuffer 入站消息缓冲
	IncomingBuffer int `json:"incoming_buffer" koanf:"incoming_buffer"`

	// Username 用户名，空表示匿名连接
	Username string `json:"username,omitempty" koanf:"username"`

	// Password 密码
	Password string `json:"-" koanf:"password"`
}

// DefaultChatConfig 返回默认聊天配置
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		Endpoint:          "/v1/websocket/",
		HandshakeTimeout:  Duration(5 * time.Second),
		KeepAliveInterval: Duration(30 * time.Second),
		MaxIdleTime:       Duration(60 * time.Second),
		WriteTimeout:      Duration(5 * time.Second),
		IncomingBuffer:    16,
	}
}

// Auth 返回凭据
func (c ChatConfig) Auth() types.Auth {
	return types.Auth{Username: c.Username, Password: c.Password}
}

// Validate 验证聊天配置
func (c ChatConfig) Validate() error {
	if !strings.HasPrefix(c.Endpoint, "/") {
		return invalid("chat.endpoint", c.Endpoint)
	}
	if c.HandshakeTimeout <= 0 {
		return invalid("chat.handshake_timeout", c.HandshakeTimeout)
	}
	if c.KeepAliveInterval <= 0 || c.MaxIdleTime <= c.KeepAliveInterval {
		return invalid("chat.max_idle_time", c.MaxIdleTime)
	}
	if c.WriteTimeout <= 0 {
		return invalid("chat.write_timeout", c.WriteTimeout)
	}
	if c.IncomingBuffer < 0 {
		return invalid("chat.incoming_buffer", c.IncomingBuffer)
	}
	return nil
}
