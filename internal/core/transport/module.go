package transport

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-chatnet/config"
	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
)

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(ProvideConnector),
	)
}

// Params 连接器依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Resolver   pkgif.DNSResolver
}

// ProvideConnector 提供直连连接器
func ProvideConnector(p Params) pkgif.TransportConnector {
	return NewDirectConnector(p.Resolver, ConfigFromUnified(p.UnifiedCfg))
}

// ConfigFromUnified 从统一配置创建连接器配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		DialTimeout:      cfg.Transport.DialTimeout.Duration(),
		HandshakeTimeout: cfg.Transport.HandshakeTimeout.Duration(),
		KeepAlive:        cfg.Transport.KeepAlive.Duration(),
	}
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "transport"
	// Description 模块描述
	Description = "TCP 拨号、TLS 握手与 ALPN 协商"
)
