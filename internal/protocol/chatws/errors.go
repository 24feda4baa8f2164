package chatws

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/types"
)

var (
	// ErrSessionClosed 会话已关闭
	ErrSessionClosed = errors.New("chatws: session closed")

	// ErrIdleTimeout 超过最长无入站数据时间
	ErrIdleTimeout = errors.New("chatws: idle timeout")
)

// ============================================================================
//                              HandshakeError
// ============================================================================

// HandshakeError WebSocket 升级失败
type HandshakeError struct {
	Route types.RouteType

	// Status 响应状态码，无响应时为 0
	Status int

	// Intermediary 响应缺少路由的确认头，来自中间设备
	Intermediary bool

	// Retry 429 响应的 Retry-After
	Retry time.Duration

	Err error
}

// Error 实现 error 接口
func (e *HandshakeError) Error() string {
	switch {
	case e.Intermediary:
		return fmt.Sprintf("chatws: upgrade rejected by intermediary (route=%s, status=%d)", e.Route, e.Status)
	case e.Status != 0:
		return fmt.Sprintf("chatws: upgrade rejected (route=%s, status=%d)", e.Route, e.Status)
	default:
		return fmt.Sprintf("chatws: upgrade failed (route=%s): %v", e.Route, e.Err)
	}
}

// Unwrap 返回底层错误
func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// Classify 实现 ErrorClassifier
func (e *HandshakeError) Classify() types.ErrorClass {
	switch {
	case e.Intermediary, e.Status == 0:
		return types.ErrorClassRetryable
	case e.Status == http.StatusTooManyRequests, e.Status >= 500:
		return types.ErrorClassRetryable
	case e.Status >= 400:
		return types.ErrorClassFatal
	default:
		return types.ErrorClassRetryable
	}
}

// RetryAfter 实现 RetryHinter
func (e *HandshakeError) RetryAfter() (time.Duration, bool) {
	return e.Retry, e.Retry > 0
}

var (
	_ pkgif.ErrorClassifier = (*HandshakeError)(nil)
	_ pkgif.RetryHinter     = (*HandshakeError)(nil)
)

// maxRetryAfter 服务端冷却提示的上限
const maxRetryAfter = time.Hour

// parseRetryAfter 解析 Retry-After（秒数或 HTTP 日期），结果不超过 maxRetryAfter
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil || errors.Is(err, strconv.ErrRange) {
		if secs <= 0 {
			return 0
		}
		if secs > int64(maxRetryAfter/time.Second) {
			return maxRetryAfter
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return min(d, maxRetryAfter)
		}
	}
	return 0
}
