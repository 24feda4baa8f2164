package chatnet

import "errors"

// 公共错误定义
var (
	// ErrClientClosed 客户端已关闭
	ErrClientClosed = errors.New("chatnet: client closed")

	// ErrUnexpectedSession 会话不是 WebSocket 聊天会话
	ErrUnexpectedSession = errors.New("chatnet: unexpected session type")

	// ErrConflictingRoutes 同时只保留 ProxyF 与 ProxyG 中的一种
	ErrConflictingRoutes = errors.New("chatnet: conflicting route options")
)
