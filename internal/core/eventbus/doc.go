// Package eventbus 实现网络变化事件总线
//
// 一个事件源，多个订阅者。支持两种订阅方式：
//   - OnChange: 注册回调，Emit 时同步调用（DNS 缓存清空、路由冷却重置）
//   - Subscribe: 缓冲通道，慢消费者的多余事件被丢弃（重连状态机）
//
// # 快速开始
//
//	bus := eventbus.NewBus()
//
//	sub := bus.OnChange(func(evt types.NetworkChangeEvent) {
//	    cache.Purge()
//	})
//	defer sub.Close()
//
//	bus.Emit(types.NetworkChangeEvent{Reason: "manual"})
//
// # Fx 模块
//
//	app := fx.New(
//	    eventbus.Module(),
//	    fx.Invoke(func(bus pkgif.NetworkChangeBus) { ... }),
//	)
//
// 依赖关系：
//   - 依赖：pkg/interfaces, pkg/types
//   - 被依赖：dns, connmgr, reconnect, netmon
package eventbus
