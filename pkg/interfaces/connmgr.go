package interfaces

import (
	"context"
	"time"

	"github.com/dep2p/go-chatnet/pkg/types"
)

// AttemptFunc 在一条路由上执行一次连接尝试
//
// 返回值若实现 io.Closer，在尝试被放弃（超时）后会被关闭。
type AttemptFunc func(ctx context.Context, params *types.ConnectionParams) (any, error)

// ConnectionManager 连接管理器
//
// 单路由管理器负责节流与超时，多路由管理器负责按序回退。
type ConnectionManager interface {
	// Connect 执行一次（或按序多次）尝试，返回第一个成功的结果
	Connect(ctx context.Context, attempt AttemptFunc) (any, error)
}

// AttemptOutcome 尝试结果分类
type AttemptOutcome int

const (
	// OutcomeSuccess 成功
	OutcomeSuccess AttemptOutcome = iota
	// OutcomeRetryable 可重试失败
	OutcomeRetryable
	// OutcomeFatal 致命失败
	OutcomeFatal
	// OutcomeTimeout 超时
	OutcomeTimeout
	// OutcomeThrottled 处于冷却，未尝试
	OutcomeThrottled
	// OutcomeCancelled 被调用方取消
	OutcomeCancelled
)

// String 返回结果的字符串表示
func (o AttemptOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryable:
		return "retryable"
	case OutcomeFatal:
		return "fatal"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeThrottled:
		return "throttled"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// AttemptObserver 连接尝试观察者（指标）
type AttemptObserver interface {
	ObserveAttempt(route types.RouteType, outcome AttemptOutcome, elapsed time.Duration)
}
