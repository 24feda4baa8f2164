package netmon

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-chatnet/config"
	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
)

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("netmon",
		fx.Provide(ProvideWatcher),
		fx.Invoke(registerLifecycle),
	)
}

// watcherParams 监听器依赖参数
type watcherParams struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Bus        pkgif.NetworkChangeBus
}

// ProvideWatcher 提供网络变化监听器
func ProvideWatcher(params watcherParams) (*Watcher, error) {
	return NewWatcher(ConfigFromUnified(params.UnifiedCfg), params.Bus)
}

// ConfigFromUnified 从统一配置创建监听配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Enabled:      cfg.NetMon.Enabled,
		PollInterval: cfg.NetMon.PollInterval.Duration(),
	}
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC      fx.Lifecycle
	Watcher *Watcher
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return input.Watcher.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return input.Watcher.Stop()
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
	Name = "netmon"
	// Description 模块描述
	Description = "轮询网络接口并发布网络变化事件"
)
