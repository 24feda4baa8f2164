package connmgr

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-chatnet/config"
	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Module 返回 Fx 模块
//
// 路由取自名为 "routes" 的 []*types.ConnectionParams；未提供时由统一配置构建。
func Module() fx.Option {
	return fx.Module("connmgr",
		fx.Provide(ProvideManager),
		fx.Invoke(registerLifecycle),
	)
}

// Params 管理器依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config            `optional:"true"`
	Routes     []*types.ConnectionParams `name:"routes" optional:"true"`
	Bus        pkgif.NetworkChangeBus
	Observer   pkgif.AttemptObserver `optional:"true"`
}

// Result 管理器输出
type Result struct {
	fx.Out

	Manager           *MultiRouteManager
	ConnectionManager pkgif.ConnectionManager
}

// ConfigFromUnified 从统一配置创建管理器配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		AttemptTimeout:   cfg.Connect.AttemptTimeout.Duration(),
		FailureThreshold: cfg.Connect.FailureThreshold,
		BaseCooldown:     cfg.Connect.BaseCooldown.Duration(),
		MaxCooldown:      cfg.Connect.MaxCooldown.Duration(),
	}
}

// ProvideManager 为配置的路由创建多路由管理器
func ProvideManager(p Params) (Result, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	routes := p.Routes
	if len(routes) == 0 && p.UnifiedCfg != nil {
		var err error
		if routes, err = p.UnifiedCfg.ConnectionParams(); err != nil {
			return Result{}, err
		}
	}
	opts := []Option{WithNetworkChangeBus(p.Bus)}
	if p.Observer != nil {
		opts = append(opts, WithObserver(p.Observer))
	}
	m, err := NewMultiRouteManagerFromParams(routes, cfg, opts...)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("创建多路由管理器", "routes", len(routes))
	return Result{Manager: m, ConnectionManager: m}, nil
}

type lifecycleInput struct {
	fx.In
	LC      fx.Lifecycle
	Manager *MultiRouteManager
}

func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return input.Manager.Close()
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
	Name = "connmgr"
	// Description 模块描述
	Description = "单路由节流与多路由顺序回退"
)
