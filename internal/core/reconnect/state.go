package reconnect

import (
	"fmt"
	"time"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
)

// ============================================================================
//                              StateKind
// ============================================================================

// StateKind 服务状态类别
type StateKind int

const (
	// StateInactive 未连接，或已取消/遇到致命错误
	StateInactive StateKind = iota
	// StateConnecting 正在尝试连接
	StateConnecting
	// StateActive 会话存活
	StateActive
	// StateCooldown 失败后等待重试
	StateCooldown
)

// String 返回状态名称
func (k StateKind) String() string {
	switch k {
	case StateInactive:
		return "inactive"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              State
// ============================================================================

// State 服务状态快照
//
// 只有状态机写入状态，调用方读到的是不可变的副本。
type State struct {
	Kind StateKind

	// Session 仅 Active 时有效
	Session pkgif.Session

	// Until 仅 Cooldown 时有效
	Until time.Time

	// Err 进入当前状态的原因（Cooldown 的失败、Inactive 的致命错误）
	Err error
}

// String 返回状态描述
func (s State) String() string {
	switch s.Kind {
	case StateActive:
		return fmt.Sprintf("active(%s)", s.Session.Info().Description())
	case StateCooldown:
		return fmt.Sprintf("cooldown(until=%s)", s.Until.Format(time.RFC3339Nano))
	default:
		return s.Kind.String()
	}
}
