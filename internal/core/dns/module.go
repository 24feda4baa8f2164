package dns

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-chatnet/config"
	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
)

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("dns",
		fx.Provide(ProvideResolver),
		fx.Invoke(registerLifecycle),
	)
}

// Params 解析器依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Bus        pkgif.NetworkChangeBus
}

// Result 解析器输出
type Result struct {
	fx.Out

	Resolver    *Resolver
	DNSResolver pkgif.DNSResolver
}

// ConfigFromUnified 从统一配置创建解析器配置
func ConfigFromUnified(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return DefaultConfig(), nil
	}
	static, err := cfg.DNS.StaticAddrs()
	if err != nil {
		return Config{}, err
	}
	return Config{
		CacheTTL:      cfg.DNS.CacheTTL.Duration(),
		CacheSize:     cfg.DNS.CacheSize,
		LookupTimeout: cfg.DNS.LookupTimeout.Duration(),
		UDPServer:     cfg.DNS.UDPServer,
		DoHURL:        cfg.DNS.DoHURL,
		SystemLookup:  cfg.DNS.SystemLookup,
		Static:        static,
	}, nil
}

// ProvideResolver 提供解析器
func ProvideResolver(p Params) (Result, error) {
	cfg, err := ConfigFromUnified(p.UnifiedCfg)
	if err != nil {
		return Result{}, err
	}
	r, err := NewResolver(cfg, p.Bus)
	if err != nil {
		return Result{}, err
	}
	return Result{Resolver: r, DNSResolver: r}, nil
}

type lifecycleInput struct {
	fx.In
	LC       fx.Lifecycle
	Resolver *Resolver
}

func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return input.Resolver.Close()
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
	Name = "dns"
	// Description 模块描述
	Description = "带缓存的多策略 DNS 解析"
)
