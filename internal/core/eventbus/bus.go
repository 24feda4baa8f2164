package eventbus

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/lib/log"
	"github.com/dep2p/go-chatnet/pkg/types"
)

var logger = log.Logger("core/eventbus")

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrClosed 事件总线已关闭
	ErrClosed = errors.New("eventbus closed")
	// ErrInvalidBuffer 无效的缓冲大小
	ErrInvalidBuffer = errors.New("subscription buffer must be positive")
)

// DefaultBuffer 通道订阅默认缓冲大小
//
// 网络变化事件只需要“发生过”这一信息，1 个缓冲足以合并连续事件。
const DefaultBuffer = 1

// ============================================================================
// Bus 实现
// ============================================================================

// Bus 网络变化事件总线
type Bus struct {
	mu     sync.RWMutex
	closed bool

	nextID    uint64
	callbacks map[uint64]func(types.NetworkChangeEvent)
	sinks     []*ChannelSubscription

	emitted   atomic.Uint64
	dropCount atomic.Int64
}

var _ pkgif.NetworkChangeBus = (*Bus)(nil)

// NewBus 创建新的事件总线
func NewBus() *Bus {
	return &Bus{
		callbacks: make(map[uint64]func(types.NetworkChangeEvent)),
	}
}

// OnChange 注册回调
//
// 总线关闭后注册的回调永远不会被调用。
func (b *Bus) OnChange(fn func(types.NetworkChangeEvent)) pkgif.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || fn == nil {
		return &callbackSubscription{}
	}
	b.nextID++
	id := b.nextID
	b.callbacks[id] = fn
	return &callbackSubscription{bus: b, id: id}
}

// Subscribe 订阅事件通道
func (b *Bus) Subscribe(opts ...pkgif.SubscriptionOpt) (pkgif.ChannelSubscription, error) {
	settings := pkgif.SubscriptionSettings{Buffer: DefaultBuffer}
	for _, opt := range opts {
		if err := opt(&settings); err != nil {
			return nil, err
		}
	}
	if settings.Buffer <= 0 {
		return nil, ErrInvalidBuffer
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	sub := &ChannelSubscription{
		bus: b,
		out: make(chan types.NetworkChangeEvent, settings.Buffer),
	}
	b.sinks = append(b.sinks, sub)
	return sub, nil
}

// Emit 广播事件
//
// 先同步调用所有回调，再以非阻塞方式投递到各通道订阅。
func (b *Bus) Emit(evt types.NetworkChangeEvent) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	fns := make([]func(types.NetworkChangeEvent), 0, len(b.callbacks))
	for _, fn := range b.callbacks {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	b.emitted.Add(1)
	logger.Debug("网络变化", "reason", evt.Reason, "callbacks", len(fns))

	for _, fn := range fns {
		fn(evt)
	}

	// 通道关闭与移除都在写锁下进行，持有读锁时发送是安全的
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.sinks {
		select {
		case sub.out <- evt:
		default:
			dropped := b.dropCount.Add(1)
			if dropped%100 == 1 {
				logger.Debug("慢消费者检测，事件已合并",
					"dropped", dropped,
					"reason", "subscriber buffer full")
			}
		}
	}
}

// Emitted 返回已广播的事件数
func (b *Bus) Emitted() uint64 {
	return b.emitted.Load()
}

// Close 关闭总线，关闭所有通道订阅并清空回调
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, sub := range b.sinks {
		sub.closeLocked()
	}
	b.sinks = nil
	b.callbacks = make(map[uint64]func(types.NetworkChangeEvent))
	return nil
}

func (b *Bus) removeCallback(id uint64) {
	b.mu.Lock()
	delete(b.callbacks, id)
	b.mu.Unlock()
}

func (b *Bus) removeSink(sub *ChannelSubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.sinks {
		if s == sub {
			b.sinks = append(b.sinks[:i], b.sinks[i+1:]...)
			break
		}
	}
	sub.closeLocked()
}
