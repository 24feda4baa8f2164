package config

import (
	"fmt"

	"github.com/dep2p/go-chatnet/pkg/types"
)

// ============================================================================
//                              预设环境
// ============================================================================

// 环境名称
const (
	EnvStaging    = "staging"
	EnvProduction = "production"
)

// confirmationHeader 服务端在每个响应中附带的确认头
const confirmationHeader = "X-Chat-Timestamp"

// Staging 返回预发布环境配置
func Staging() *Config {
	cfg := newBaseConfig()
	cfg.Env = EnvStaging
	cfg.Routes = presetRoutes("chat.staging.example.net", "/service-staging")
	cfg.DNS.Static = map[string][]string{
		"chat.staging.example.net": {"192.0.2.10", "2001:db8::10"},
	}
	return cfg
}

// Production 返回生产环境配置
func Production() *Config {
	cfg := newBaseConfig()
	cfg.Env = EnvProduction
	cfg.Routes = presetRoutes("chat.example.net", "/service")
	cfg.DNS.Static = map[string][]string{
		"chat.example.net": {"192.0.2.1", "192.0.2.2", "2001:db8::1"},
	}
	return cfg
}

// ForEnv 按名称返回预设配置
func ForEnv(name string) (*Config, error) {
	switch name {
	case EnvStaging:
		return Staging(), nil
	case EnvProduction, "prod":
		return Production(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEnv, name)
	}
}

// presetRoutes 直连在前，两条域前置代理随后
//
// 代理路由以前置 CDN 的域名作为 SNI，真实服务端由路径前缀区分。
func presetRoutes(server, proxyPrefix string) []RouteConfig {
	return []RouteConfig{
		{
			Type:               types.RouteDirect,
			SNI:                server,
			Host:               server,
			Port:               443,
			ConfirmationHeader: confirmationHeader,
		},
		{
			Type:               types.RouteProxyF,
			SNI:                "front-f.example.com",
			Host:               "front-f.example.com",
			Port:               443,
			PathPrefix:         proxyPrefix,
			ConfirmationHeader: confirmationHeader,
		},
		{
			Type:               types.RouteProxyG,
			SNI:                "front-g.example.org",
			Host:               "front-g.example.org",
			Port:               443,
			PathPrefix:         proxyPrefix,
			ConfirmationHeader: confirmationHeader,
		},
	}
}
