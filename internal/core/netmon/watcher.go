package netmon

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/lib/log"
	"github.com/dep2p/go-chatnet/pkg/types"
)

var logger = log.Logger("core/netmon")

// ============================================================================
//                              Watcher
// ============================================================================

// Watcher 基于轮询的网络变化监听器
type Watcher struct {
	cfg      Config
	bus      pkgif.NetworkChangeBus
	clock    clock.Clock
	snapshot SnapshotFunc

	mu   sync.Mutex
	last []InterfaceSnapshot
	fp   string

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option Watcher 选项
type Option func(*Watcher)

// WithClock 设置时钟
func WithClock(c clock.Clock) Option {
	return func(w *Watcher) { w.clock = c }
}

// WithSnapshotFunc 设置接口读取函数
func WithSnapshotFunc(fn SnapshotFunc) Option {
	return func(w *Watcher) { w.snapshot = fn }
}

// NewWatcher 创建监听器
func NewWatcher(cfg Config, bus pkgif.NetworkChangeBus, opts ...Option) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &Watcher{
		cfg:      cfg,
		bus:      bus,
		clock:    clock.New(),
		snapshot: SystemInterfaces,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start 启动轮询
func (w *Watcher) Start(ctx context.Context) error {
	if !w.cfg.Enabled {
		return nil
	}
	if !w.running.CompareAndSwap(false, true) {
		return nil
	}

	snaps, err := w.snapshot()
	if err != nil {
		logger.Warn("读取网络接口失败", "err", err)
	}
	w.mu.Lock()
	w.last = snaps
	w.fp = fingerprint(snaps)
	w.mu.Unlock()

	// 轮询不应随启动用的 ctx 结束
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancel = cancel
	ticker := w.clock.Ticker(w.cfg.PollInterval)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				w.Check()
			}
		}
	}()

	logger.Info("网络变化监听器已启动", "poll_interval", w.cfg.PollInterval)
	return nil
}

// Stop 停止轮询
func (w *Watcher) Stop() error {
	if !w.running.CompareAndSwap(true, false) {
		return nil
	}
	w.cancel()
	w.wg.Wait()
	logger.Info("网络变化监听器已停止")
	return nil
}

// Check 立即检查一次，发生变化时广播事件并返回 true
func (w *Watcher) Check() bool {
	snaps, err := w.snapshot()
	if err != nil {
		logger.Debug("读取网络接口失败", "err", err)
		return false
	}
	fp := fingerprint(snaps)

	w.mu.Lock()
	prev, prevFP := w.last, w.fp
	w.last, w.fp = snaps, fp
	w.mu.Unlock()

	if fp == prevFP {
		return false
	}

	reason := changeReason(prev, snaps)
	logger.Info("检测到网络变化", "reason", reason, "fingerprint", fp[:8])
	w.bus.Emit(types.NetworkChangeEvent{Reason: reason, Timestamp: w.clock.Now()})
	return true
}
