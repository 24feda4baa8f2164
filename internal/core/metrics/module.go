package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-chatnet/config"
	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
)

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideCollector),
		fx.Invoke(registerLifecycle),
	)
}

// Params 指标依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config       `optional:"true"`
	Registry   *prometheus.Registry `optional:"true"`
}

// Result 指标输出
type Result struct {
	fx.Out

	Collector       *Collector
	AttemptObserver pkgif.AttemptObserver
	StateObserver   pkgif.ServiceStateObserver
	Server          *Server
}

// ProvideCollector 提供指标收集器与 HTTP 服务
func ProvideCollector(p Params) Result {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	reg := p.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	c := NewCollector(reg)
	var srv *Server
	if cfg.Enabled {
		srv = NewServer(cfg, reg)
	}
	return Result{
		Collector:       c,
		AttemptObserver: c,
		StateObserver:   c,
		Server:          srv,
	}
}

// ConfigFromUnified 从统一配置创建指标配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Enabled:    cfg.Metrics.Enabled,
		ListenAddr: cfg.Metrics.ListenAddr,
	}
}

type lifecycleInput struct {
	fx.In
	LC     fx.Lifecycle
	Server *Server
}

func registerLifecycle(input lifecycleInput) {
	if input.Server == nil {
		return
	}
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return input.Server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return input.Server.Stop(ctx)
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
	Name = "metrics"
	// Description 模块描述
	Description = "连接尝试与服务状态的 Prometheus 指标"
)
