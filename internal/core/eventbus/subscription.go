package eventbus

import (
	"sync"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// ============================================================================
// ChannelSubscription 实现
// ============================================================================

// ChannelSubscription 通道订阅
type ChannelSubscription struct {
	bus       *Bus
	out       chan types.NetworkChangeEvent
	closeOnce sync.Once
	done      bool
}

var _ pkgif.ChannelSubscription = (*ChannelSubscription)(nil)

// Out 返回事件通道
func (s *ChannelSubscription) Out() <-chan types.NetworkChangeEvent {
	return s.out
}

// Close 取消订阅
//
// Close 是并发安全的，可以多次调用。关闭后 Out() 通道被关闭。
func (s *ChannelSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.bus.removeSink(s)
	})
	return nil
}

// closeLocked 关闭通道，调用方持有 bus 写锁
func (s *ChannelSubscription) closeLocked() {
	if s.done {
		return
	}
	s.done = true
	close(s.out)
}

// ============================================================================
// callbackSubscription 实现
// ============================================================================

// callbackSubscription 回调订阅
type callbackSubscription struct {
	bus  *Bus
	id   uint64
	once sync.Once
}

// Close 注销回调
func (s *callbackSubscription) Close() error {
	if s.bus == nil {
		return nil
	}
	s.once.Do(func() {
		s.bus.removeCallback(s.id)
	})
	return nil
}
