package reconnect

import "errors"

var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("reconnect: invalid config")

	// ErrCancelled 服务已取消
	ErrCancelled = errors.New("reconnect: service cancelled")

	// ErrNotConnected 服务未处于 Active
	ErrNotConnected = errors.New("reconnect: service not connected")
)
