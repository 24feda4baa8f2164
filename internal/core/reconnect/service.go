package reconnect

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/lib/log"
	"github.com/dep2p/go-chatnet/pkg/types"
)

var logger = log.Logger("core/reconnect")

// ============================================================================
//                              Service
// ============================================================================

// Service 自动重连的服务
type Service struct {
	connector Connector
	cfg       Config
	clock     clock.Clock
	bus       pkgif.NetworkChangeBus
	observer  pkgif.ServiceStateObserver

	mu       sync.Mutex
	state    State
	changed  chan struct{} // 每次状态变化时关闭并替换
	started  bool
	terminal bool

	// wake 网络变化信号，容量为 1
	wake chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	sub    pkgif.Subscription
}

// Option 服务选项
type Option func(*Service)

// WithClock 设置时钟
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithNetworkChangeBus 订阅网络变化
func WithNetworkChangeBus(bus pkgif.NetworkChangeBus) Option {
	return func(s *Service) { s.bus = bus }
}

// WithObserver 设置状态观察者
func WithObserver(obs pkgif.ServiceStateObserver) Option {
	return func(s *Service) { s.observer = obs }
}

// NewService 创建服务，初始状态为 Inactive
func NewService(connector Connector, cfg Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		connector: connector,
		cfg:       cfg,
		clock:     clock.New(),
		changed:   make(chan struct{}),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s, nil
}

// Name 返回服务名称
func (s *Service) Name() string {
	return s.cfg.Name
}

// Start 开始连接
//
// 重复调用无效果；已取消的服务返回 ErrCancelled。
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal {
		return ErrCancelled
	}
	if s.started {
		return nil
	}
	s.started = true

	if s.bus != nil {
		s.sub = s.bus.OnChange(s.onNetworkChange)
	}
	go s.run()
	return nil
}

// State 返回状态快照
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Session 返回当前会话，未处于 Active 时返回 ErrNotConnected
func (s *Service) Session() (pkgif.Session, error) {
	st := s.State()
	if st.Kind != StateActive {
		return nil, ErrNotConnected
	}
	return st.Session, nil
}

// Err 返回使服务终止的致命错误
func (s *Service) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal {
		return s.state.Err
	}
	return nil
}

// Done 状态机退出后关闭
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// WaitActive 等待服务进入 Active
//
// 服务终止时返回致命错误或 ErrCancelled。
func (s *Service) WaitActive(ctx context.Context) (pkgif.Session, error) {
	for {
		s.mu.Lock()
		st, changed, terminal := s.state, s.changed, s.terminal
		s.mu.Unlock()

		switch {
		case st.Kind == StateActive:
			return st.Session, nil
		case terminal && st.Err != nil:
			return nil, st.Err
		case terminal:
			return nil, ErrCancelled
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Cancel 立即进入 Inactive 并中止进行中的尝试
//
// 可重复调用。Cancel 返回时状态已是 Inactive。
func (s *Service) Cancel() {
	s.mu.Lock()
	if s.terminal {
		s.mu.Unlock()
		return
	}
	prev := s.state
	s.terminal = true
	s.state = State{Kind: StateInactive}
	s.notifyLocked()
	started := s.started
	s.mu.Unlock()

	s.cancel()
	if prev.Kind == StateActive {
		_ = prev.Session.Close()
	}
	if !started {
		close(s.done)
	}
	s.observe(StateInactive)
	logger.Info("服务已取消", "service", s.cfg.Name, "from", prev.Kind)
}

// ============================================================================
//                              状态机
// ============================================================================

func (s *Service) run() {
	defer close(s.done)
	defer func() {
		if s.sub != nil {
			_ = s.sub.Close()
		}
	}()

	for s.ctx.Err() == nil {
		// 进入新一轮前丢弃旧的网络变化信号
		select {
		case <-s.wake:
		default:
		}
		if !s.transition(State{Kind: StateConnecting}) {
			return
		}

		session, err := s.connectOnce()
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			if pkgif.IsFatal(err) {
				s.fail(err)
				return
			}
			if !s.cooldown(err) {
				return
			}
			continue
		}

		if !s.transition(State{Kind: StateActive, Session: session}) {
			_ = session.Close()
			return
		}
		// 连接期间的网络变化已由本次连接覆盖
		select {
		case <-s.wake:
		default:
		}
		logger.Info("服务已连接", "service", s.cfg.Name, "info", session.Info().Description())

		select {
		case <-session.Done():
			logger.Info("会话已结束，重新连接", "service", s.cfg.Name)
		case <-s.wake:
			logger.Info("网络变化，重新连接", "service", s.cfg.Name)
			_ = session.Close()
		case <-s.ctx.Done():
			_ = session.Close()
			return
		}
	}
}

func (s *Service) connectOnce() (pkgif.Session, error) {
	ctx, cancel := s.clock.WithTimeout(s.ctx, s.cfg.ConnectTimeout)
	defer cancel()
	return s.connector.Connect(ctx)
}

// cooldown 进入冷却并等待，返回 false 表示服务已取消
func (s *Service) cooldown(err error) bool {
	d := s.cfg.Cooldown
	if hint, ok := pkgif.RetryAfter(err); ok && hint > 0 {
		d = hint
	}

	// 定时器先于状态发布创建，观察到 Cooldown 时定时器已在计时
	timer := s.clock.Timer(d)
	defer timer.Stop()

	until := s.clock.Now().Add(d)
	if !s.transition(State{Kind: StateCooldown, Until: until, Err: err}) {
		return false
	}
	logger.Warn("连接失败，进入冷却", "service", s.cfg.Name, "cooldown", d, "err", err)

	select {
	case <-timer.C:
	case <-s.wake:
		logger.Info("网络变化，提前结束冷却", "service", s.cfg.Name)
	case <-s.ctx.Done():
		return false
	}
	return true
}

// fail 致命错误，进入终态 Inactive
func (s *Service) fail(err error) {
	s.mu.Lock()
	if s.terminal {
		s.mu.Unlock()
		return
	}
	s.terminal = true
	s.state = State{Kind: StateInactive, Err: err}
	s.notifyLocked()
	s.mu.Unlock()

	s.cancel()
	s.observe(StateInactive)
	logger.Error("服务遇到致命错误，停止重连", "service", s.cfg.Name, "err", err)
}

// transition 写入新状态，服务已终止时返回 false
func (s *Service) transition(next State) bool {
	s.mu.Lock()
	if s.terminal {
		s.mu.Unlock()
		return false
	}
	s.state = next
	s.notifyLocked()
	s.mu.Unlock()

	s.observe(next.Kind)
	logger.Debug("服务状态变化", "service", s.cfg.Name, "state", next.Kind)
	return true
}

func (s *Service) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Service) onNetworkChange(evt types.NetworkChangeEvent) {
	select {
	case s.wake <- struct{}{}:
	default:
	}
	logger.Debug("收到网络变化", "service", s.cfg.Name, "reason", evt.Reason)
}

func (s *Service) observe(kind StateKind) {
	if s.observer != nil {
		s.observer.ObserveServiceState(s.cfg.Name, kind.String())
	}
}

// ============================================================================
//                              NoReconnectService
// ============================================================================

// NoReconnectService 只连接一次的服务
type NoReconnectService struct {
	state State
}

// StartNoReconnect 尝试连接一次
func StartNoReconnect(ctx context.Context, connector Connector) *NoReconnectService {
	start := time.Now()
	session, err := connector.Connect(ctx)
	if err != nil {
		logger.Debug("一次性连接失败", "elapsed", time.Since(start), "err", err)
		return &NoReconnectService{state: State{Kind: StateInactive, Err: err}}
	}
	return &NoReconnectService{state: State{Kind: StateActive, Session: session}}
}

// State 返回状态
func (s *NoReconnectService) State() State {
	return s.state
}

// Session 返回会话
func (s *NoReconnectService) Session() (pkgif.Session, error) {
	if s.state.Kind != StateActive {
		return nil, ErrNotConnected
	}
	return s.state.Session, nil
}

// Err 返回连接错误
func (s *NoReconnectService) Err() error {
	return s.state.Err
}

// Close 关闭会话
func (s *NoReconnectService) Close() error {
	if s.state.Kind == StateActive {
		return s.state.Session.Close()
	}
	return nil
}
