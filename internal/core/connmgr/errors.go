package connmgr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// 连接管理器错误定义
var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("connmgr: invalid config")

	// ErrNoRoutes 没有配置任何路由
	ErrNoRoutes = errors.New("connmgr: no routes configured")

	// ErrNilParams 路由为空
	ErrNilParams = errors.New("connmgr: nil connection params")
)

// ============================================================================
//                              ThrottledError
// ============================================================================

// ThrottledError 路由处于冷却期，未进行尝试
type ThrottledError struct {
	Route     types.RouteType
	Until     time.Time
	Remaining time.Duration
}

// Error 实现 error 接口
func (e *ThrottledError) Error() string {
	return fmt.Sprintf("connmgr: route %s throttled for %s", e.Route, e.Remaining)
}

// Classify 实现 ErrorClassifier
func (e *ThrottledError) Classify() types.ErrorClass { return types.ErrorClassRetryable }

// RetryAfter 实现 RetryHinter
func (e *ThrottledError) RetryAfter() (time.Duration, bool) { return e.Remaining, true }

// ============================================================================
//                              TimeoutError
// ============================================================================

// TimeoutError 单次尝试超时
type TimeoutError struct {
	Route   types.RouteType
	Timeout time.Duration
}

// Error 实现 error 接口
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("connmgr: route %s attempt timed out after %s", e.Route, e.Timeout)
}

// Classify 实现 ErrorClassifier
func (e *TimeoutError) Classify() types.ErrorClass { return types.ErrorClassRetryable }

// ============================================================================
//                              MultiRouteError
// ============================================================================

// RouteFailure 一条路由的失败
type RouteFailure struct {
	Params *types.ConnectionParams
	Err    error
	Class  types.ErrorClass
}

// MultiRouteError 多路由尝试失败
//
// 只要有一条路由是致命错误，整体即为致命；否则可重试。
type MultiRouteError struct {
	Failures []RouteFailure
}

// Error 实现 error 接口
func (e *MultiRouteError) Error() string {
	var b strings.Builder
	if e.Classify() == types.ErrorClassFatal {
		b.WriteString("connmgr: fatal error connecting")
	} else {
		fmt.Fprintf(&b, "connmgr: all %d routes failed", len(e.Failures))
	}
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "; %s [%s]: %v", f.Params, f.Class, f.Err)
	}
	return b.String()
}

// Unwrap 返回各路由的错误
func (e *MultiRouteError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// Classify 实现 ErrorClassifier
func (e *MultiRouteError) Classify() types.ErrorClass {
	for _, f := range e.Failures {
		if f.Class == types.ErrorClassFatal {
			return types.ErrorClassFatal
		}
	}
	return types.ErrorClassRetryable
}

// RetryAfter 所有路由都在冷却时，返回最早的解除时间
func (e *MultiRouteError) RetryAfter() (time.Duration, bool) {
	if len(e.Failures) == 0 {
		return 0, false
	}
	var earliest time.Duration
	for i, f := range e.Failures {
		var te *ThrottledError
		if !errors.As(f.Err, &te) {
			return 0, false
		}
		if i == 0 || te.Remaining < earliest {
			earliest = te.Remaining
		}
	}
	return earliest, true
}

var (
	_ pkgif.ErrorClassifier = (*ThrottledError)(nil)
	_ pkgif.ErrorClassifier = (*TimeoutError)(nil)
	_ pkgif.ErrorClassifier = (*MultiRouteError)(nil)
	_ pkgif.RetryHinter     = (*ThrottledError)(nil)
	_ pkgif.RetryHinter     = (*MultiRouteError)(nil)
)
