package chatws

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-chatnet/config"
	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("chatws",
		fx.Provide(ProvideConnector),
	)
}

// Params 连接器依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Auth       *types.Auth    `optional:"true"`
}

// Result 连接器输出
type Result struct {
	fx.Out

	Connector        *Connector
	ServiceConnector pkgif.ServiceConnector
}

// ProvideConnector 提供 WebSocket 服务连接器
func ProvideConnector(p Params) (Result, error) {
	var opts []Option
	switch {
	case p.Auth != nil:
		opts = append(opts, WithAuth(*p.Auth))
	case p.UnifiedCfg != nil:
		opts = append(opts, WithAuth(p.UnifiedCfg.Chat.Auth()))
	}
	c, err := NewConnector(ConfigFromUnified(p.UnifiedCfg), opts...)
	if err != nil {
		return Result{}, err
	}
	return Result{Connector: c, ServiceConnector: c}, nil
}

// ConfigFromUnified 从统一配置创建连接器配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Endpoint:          cfg.Chat.Endpoint,
		HandshakeTimeout:  cfg.Chat.HandshakeTimeout.Duration(),
		KeepAliveInterval: cfg.Chat.KeepAliveInterval.Duration(),
		MaxIdleTime:       cfg.Chat.MaxIdleTime.Duration(),
		WriteTimeout:      cfg.Chat.WriteTimeout.Duration(),
		IncomingBuffer:    cfg.Chat.IncomingBuffer,
	}
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "chatws"
	// Description 模块描述
	Description = "聊天服务的 WebSocket 会话"
)
