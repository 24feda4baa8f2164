package introspect

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-chatnet/config"
	"github.com/dep2p/go-chatnet/internal/core/connmgr"
	"github.com/dep2p/go-chatnet/internal/core/reconnect"
)

// Module 返回自省服务 Fx 模块
func Module() fx.Option {
	return fx.Module("introspect",
		fx.Provide(NewFromParams),
		fx.Invoke(registerLifecycle),
	)
}

// Params 自省服务依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config             `optional:"true"`
	Manager    *connmgr.MultiRouteManager `optional:"true"`
	Service    *reconnect.Service         `optional:"true"`
}

// Output 自省服务输出
type Output struct {
	fx.Out

	Server *Server
}

// ConfigFromUnified 从统一配置创建自省服务配置，禁用时返回 nil
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil || !cfg.Introspect.Enabled {
		return nil
	}
	return &Config{Addr: cfg.Introspect.Addr}
}

// NewFromParams 从参数创建自省服务，禁用时 Server 为 nil
func NewFromParams(p Params) Output {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if cfg == nil {
		return Output{}
	}
	if p.Manager != nil {
		cfg.Routes = p.Manager
	}
	if p.Service != nil {
		cfg.Service = p.Service
	}
	return Output{Server: New(*cfg)}
}

type lifecycleInput struct {
	fx.In
	LC     fx.Lifecycle
	Server *Server
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	if input.Server == nil {
		return
	}
	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return input.Server.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return input.Server.Stop()
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
	Name = "introspect"
	// Description 模块描述
	Description = "本地 JSON 诊断与 pprof 端点"
)
