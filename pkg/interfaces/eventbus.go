package interfaces

import "github.com/dep2p/go-chatnet/pkg/types"

// NetworkChangeBus 网络变化事件总线
//
// 一个事件源，多个订阅者；订阅者既可以注册回调，也可以从通道读取。
type NetworkChangeBus interface {
	// OnChange 注册回调，事件发生时同步调用
	//
	// 回调不得阻塞。
	OnChange(fn func(types.NetworkChangeEvent)) Subscription

	// Subscribe 订阅事件通道
	Subscribe(opts ...SubscriptionOpt) (ChannelSubscription, error)

	// Emit 广播事件
	Emit(evt types.NetworkChangeEvent)
}

// Subscription 可取消的订阅
type Subscription interface {
	// Close 取消订阅，可重复调用
	Close() error
}

// ChannelSubscription 基于通道的订阅
//
// 订阅者跟不上时多余的事件会被合并：通道里已有一个待读事件时，
// 新事件只会被丢弃，读到的事件足以表示“网络变了”。
type ChannelSubscription interface {
	Subscription

	// Out 返回事件通道，Close 后关闭
	Out() <-chan types.NetworkChangeEvent
}

// SubscriptionOpt 订阅选项
type SubscriptionOpt func(*SubscriptionSettings) error

// SubscriptionSettings 订阅设置
type SubscriptionSettings struct {
	// Buffer 通道缓冲大小
	Buffer int
}

// BufSize 设置订阅通道缓冲大小
func BufSize(n int) SubscriptionOpt {
	return func(s *SubscriptionSettings) error {
		s.Buffer = n
		return nil
	}
}
