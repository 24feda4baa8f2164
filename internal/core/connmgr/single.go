package connmgr

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/lib/log"
	"github.com/dep2p/go-chatnet/pkg/types"
)

var logger = log.Logger("core/connmgr")

// ============================================================================
//                              AttemptState
// ============================================================================

// AttemptState 路由的尝试状态快照
type AttemptState struct {
	// ConsecutiveFailures 连续可重试失败次数
	ConsecutiveFailures int

	// LastAttempt 最近一次真正发起尝试的时间
	LastAttempt time.Time

	// CooldownUntil 冷却截止时间，零值表示不在冷却
	CooldownUntil time.Time
}

// ============================================================================
//                              SingleRouteManager
// ============================================================================

// SingleRouteManager 单路由节流连接管理器
type SingleRouteManager struct {
	params   *types.ConnectionParams
	cfg      Config
	clock    clock.Clock
	observer pkgif.AttemptObserver

	// attemptLock 串行化尝试，容量为 1，等待可被 ctx 取消
	attemptLock chan struct{}

	mu    sync.Mutex
	state AttemptState

	sub pkgif.Subscription
}

var _ pkgif.ConnectionManager = (*SingleRouteManager)(nil)

// Option 管理器选项
type Option func(*options)

type options struct {
	clock    clock.Clock
	bus      pkgif.NetworkChangeBus
	observer pkgif.AttemptObserver
}

// WithClock 设置时钟
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithNetworkChangeBus 订阅网络变化以清除冷却
func WithNetworkChangeBus(bus pkgif.NetworkChangeBus) Option {
	return func(o *options) { o.bus = bus }
}

// WithObserver 设置尝试观察者
func WithObserver(obs pkgif.AttemptObserver) Option {
	return func(o *options) { o.observer = obs }
}

// NewSingleRouteManager 创建单路由管理器
func NewSingleRouteManager(params *types.ConnectionParams, cfg Config, opts ...Option) (*SingleRouteManager, error) {
	if params == nil {
		return nil, ErrNilParams
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}

	m := &SingleRouteManager{
		params:      params,
		cfg:         cfg,
		clock:       o.clock,
		observer:    o.observer,
		attemptLock: make(chan struct{}, 1),
	}
	if o.bus != nil {
		m.sub = o.bus.OnChange(func(evt types.NetworkChangeEvent) {
			m.reset(evt.Reason)
		})
	}
	return m, nil
}

// Params 返回路由描述
func (m *SingleRouteManager) Params() *types.ConnectionParams {
	return m.params
}

// State 返回状态快照
func (m *SingleRouteManager) State() AttemptState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Close 取消网络变化订阅
func (m *SingleRouteManager) Close() error {
	if m.sub != nil {
		return m.sub.Close()
	}
	return nil
}

// Connect 在本路由上执行一次尝试
//
// 冷却期内直接返回 *ThrottledError；超时返回 *TimeoutError，
// 超时后被放弃的尝试如果最终成功，其结果（io.Closer）会被关闭。
func (m *SingleRouteManager) Connect(ctx context.Context, attempt pkgif.AttemptFunc) (any, error) {
	select {
	case m.attemptLock <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-m.attemptLock }()

	route := m.params.RouteType()
	start := m.clock.Now()

	m.mu.Lock()
	until := m.state.CooldownUntil
	if start.Before(until) {
		m.mu.Unlock()
		remaining := until.Sub(start)
		m.observe(pkgif.OutcomeThrottled, 0)
		logger.Debug("路由冷却中，跳过尝试", "route", route, "remaining", remaining)
		return nil, &ThrottledError{Route: route, Until: until, Remaining: remaining}
	}
	m.state.LastAttempt = start
	m.mu.Unlock()

	actx, cancel := m.clock.WithTimeout(ctx, m.cfg.AttemptTimeout)
	defer cancel()

	done := make(chan attemptResult, 1)
	go func() {
		v, err := attempt(actx, m.params)
		done <- attemptResult{v, err}
	}()

	select {
	case r := <-done:
		elapsed := m.clock.Since(start)
		switch {
		case r.err == nil:
			m.recordSuccess()
			m.observe(pkgif.OutcomeSuccess, elapsed)
			return r.val, nil
		case ctx.Err() != nil:
			m.observe(pkgif.OutcomeCancelled, elapsed)
			return nil, r.err
		case errors.Is(actx.Err(), context.DeadlineExceeded):
			m.recordFailure(r.err)
			m.observe(pkgif.OutcomeTimeout, elapsed)
			return nil, &TimeoutError{Route: route, Timeout: m.cfg.AttemptTimeout}
		case pkgif.IsFatal(r.err):
			m.observe(pkgif.OutcomeFatal, elapsed)
			logger.Warn("路由致命错误", "route", route, "err", r.err)
			return nil, r.err
		default:
			m.recordFailure(r.err)
			m.observe(pkgif.OutcomeRetryable, elapsed)
			return nil, r.err
		}

	case <-actx.Done():
		go abandon(done)
		elapsed := m.clock.Since(start)
		if ctx.Err() != nil {
			m.observe(pkgif.OutcomeCancelled, elapsed)
			return nil, ctx.Err()
		}
		err := &TimeoutError{Route: route, Timeout: m.cfg.AttemptTimeout}
		m.recordFailure(err)
		m.observe(pkgif.OutcomeTimeout, elapsed)
		return nil, err
	}
}

type attemptResult struct {
	val any
	err error
}

// abandon 等待被放弃的尝试结束，关闭其成功结果
func abandon(done <-chan attemptResult) {
	r := <-done
	if r.err != nil {
		return
	}
	if c, ok := r.val.(io.Closer); ok {
		_ = c.Close()
	}
}

func (m *SingleRouteManager) recordSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.ConsecutiveFailures = 0
	m.state.CooldownUntil = time.Time{}
}

func (m *SingleRouteManager) recordFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.ConsecutiveFailures++
	if cd := m.cfg.CooldownFor(m.state.ConsecutiveFailures); cd > 0 {
		m.state.CooldownUntil = m.clock.Now().Add(cd)
		logger.Info("路由进入冷却",
			"route", m.params.RouteType(),
			"failures", m.state.ConsecutiveFailures,
			"cooldown", cd,
			"err", err)
	}
}

// reset 网络变化后清除冷却与失败计数
func (m *SingleRouteManager) reset(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.ConsecutiveFailures == 0 && m.state.CooldownUntil.IsZero() {
		return
	}
	m.state.ConsecutiveFailures = 0
	m.state.CooldownUntil = time.Time{}
	logger.Debug("网络变化，清除路由冷却", "route", m.params.RouteType(), "reason", reason)
}

func (m *SingleRouteManager) observe(outcome pkgif.AttemptOutcome, elapsed time.Duration) {
	if m.observer != nil {
		m.observer.ObserveAttempt(m.params.RouteType(), outcome, elapsed)
	}
}
