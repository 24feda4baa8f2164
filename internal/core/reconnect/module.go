package reconnect

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-chatnet/config"
	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
)

// Module 返回 Fx 模块
//
// 服务不会在 OnStart 时自动连接，由调用方 Start。
func Module() fx.Option {
	return fx.Module("reconnect",
		fx.Provide(ProvideInitializer, ProvideService),
		fx.Invoke(registerLifecycle),
	)
}

// InitializerParams 初始化器依赖参数
type InitializerParams struct {
	fx.In

	Service   pkgif.ServiceConnector
	Transport pkgif.TransportConnector
	Manager   pkgif.ConnectionManager
}

// ProvideInitializer 提供服务初始化器
func ProvideInitializer(p InitializerParams) *ServiceInitializer {
	return NewServiceInitializer(p.Service, p.Transport, p.Manager)
}

// ServiceParams 服务依赖参数
type ServiceParams struct {
	fx.In

	UnifiedCfg  *config.Config `optional:"true"`
	Initializer *ServiceInitializer
	Bus         pkgif.NetworkChangeBus
	Observer    pkgif.ServiceStateObserver `optional:"true"`
}

// ProvideService 提供重连服务
func ProvideService(p ServiceParams) (*Service, error) {
	opts := []Option{WithNetworkChangeBus(p.Bus)}
	if p.Observer != nil {
		opts = append(opts, WithObserver(p.Observer))
	}
	return NewService(p.Initializer, ConfigFromUnified(p.UnifiedCfg), opts...)
}

// ConfigFromUnified 从统一配置创建服务配置
func ConfigFromUnified(cfg *config.Config) Config {
	out := DefaultConfig()
	if cfg == nil {
		return out
	}
	out.Cooldown = cfg.Reconnect.Cooldown.Duration()
	out.ConnectTimeout = cfg.Reconnect.ConnectTimeout.Duration()
	return out
}

type lifecycleInput struct {
	fx.In
	LC      fx.Lifecycle
	Service *Service
}

func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			input.Service.Cancel()
			select {
			case <-input.Service.Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
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
	Name = "reconnect"
	// Description 模块描述
	Description = "服务会话建立与自动重连状态机"
)
