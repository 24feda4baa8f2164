package types

import "time"

// NetworkChangeEvent 网络环境变化事件
//
// 由平台层或网络监控器触发，表示此前的可达性判断可能已失效。
type NetworkChangeEvent struct {
	// Reason 触发原因（如 "interface_up"、"manual"）
	Reason string

	// Timestamp 事件时间
	Timestamp time.Time
}

// Auth 服务凭据
//
// 连接层只负责透传，不做解释。
type Auth struct {
	Username string
	Password string
}

// IsZero 是否未设置凭据
func (a Auth) IsZero() bool {
	return a.Username == "" && a.Password == ""
}
