package eventbus

import (
	"context"

	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Bus      *Bus
	EventBus pkgif.NetworkChangeBus
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("eventbus",
		fx.Provide(ProvideEventBus),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideEventBus 提供 EventBus 实例
func ProvideEventBus() Result {
	bus := NewBus()
	return Result{
		Bus:      bus,
		EventBus: bus,
	}
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC  fx.Lifecycle
	Bus *Bus
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return input.Bus.Close()
		},
	})
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "eventbus"
	// Description 模块描述
	Description = "网络变化事件总线，一个事件源多个订阅者"
)
