// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 文件与 CHATNET_ 环境变量加载配置
//   - 支持预设配置（staging/production）
//
// 使用示例：
//
//	// 使用预设配置
//	cfg := config.Staging()
//
//	// 从文件与环境变量加载（未出现的字段保持预设值）
//	cfg, err := config.Load("chatnet.json")
//
//	// 只保留某一类路由
//	cfg.KeepRoutes(types.RouteProxyF)
package config

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-chatnet/pkg/types"
)

// Config 是连接层的完整配置结构
//
//   - Routes: 按尝试顺序排列的路由
//   - Connect: 单路由节流与超时
//   - DNS: 解析与缓存、静态回退表
//   - Transport: TCP/TLS 拨号
//   - Reconnect: 重连状态机
//   - Chat: WebSocket 聊天服务
//   - NetMon: 网络变化检测
//   - Metrics: 指标
//   - Introspect: 本地诊断 HTTP 服务
//   - Log: 日志
type Config struct {
	// Env 环境名称（staging/production）
	Env string `json:"env" koanf:"env"`

	// Routes 路由列表，顺序即尝试顺序
	Routes []RouteConfig `json:"routes" koanf:"routes"`

	// Connect 连接管理配置
	Connect ConnectConfig `json:"connect" koanf:"connect"`

	// DNS 解析配置
	DNS DNSConfig `json:"dns" koanf:"dns"`

	// Transport 传输配置
	Transport TransportConfig `json:"transport" koanf:"transport"`

	// Reconnect 重连配置
	Reconnect ReconnectConfig `json:"reconnect" koanf:"reconnect"`

	// Chat 聊天服务配置
	Chat ChatConfig `json:"chat" koanf:"chat"`

	// NetMon 网络监视配置
	NetMon NetMonConfig `json:"netmon" koanf:"netmon"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics" koanf:"metrics"`

	// Introspect 自省服务配置
	Introspect IntrospectConfig `json:"introspect" koanf:"introspect"`

	// Log 日志配置
	Log LogConfig `json:"log" koanf:"log"`
}

// NewConfig 创建默认配置（生产环境预设）
func NewConfig() *Config {
	return Production()
}

// newBaseConfig 返回不含路由的默认配置
func newBaseConfig() *Config {
	return &Config{
		Connect:    DefaultConnectConfig(),
		DNS:        DefaultDNSConfig(),
		Transport:  DefaultTransportConfig(),
		Reconnect:  DefaultReconnectConfig(),
		Chat:       DefaultChatConfig(),
		NetMon:     DefaultNetMonConfig(),
		Metrics:    DefaultMetricsConfig(),
		Introspect: DefaultIntrospectConfig(),
		Log:        DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if len(c.Routes) == 0 {
		return ErrNoRoutes
	}
	for i, r := range c.Routes {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("routes[%d]: %w", i, err)
		}
	}
	if err := c.Connect.Validate(); err != nil {
		return err
	}
	if err := c.DNS.Validate(); err != nil {
		return err
	}
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	if err := c.Reconnect.Validate(); err != nil {
		return err
	}
	if err := c.Chat.Validate(); err != nil {
		return err
	}
	if err := c.NetMon.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Introspect.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

// ConnectionParams 构建所有路由的描述
func (c *Config) ConnectionParams() ([]*types.ConnectionParams, error) {
	if len(c.Routes) == 0 {
		return nil, ErrNoRoutes
	}
	out := make([]*types.ConnectionParams, 0, len(c.Routes))
	for i, r := range c.Routes {
		p, err := r.Build()
		if err != nil {
			return nil, fmt.Errorf("routes[%d]: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// KeepRoutes 只保留给定类型的路由，保持原有顺序
func (c *Config) KeepRoutes(kinds ...types.RouteType) {
	keep := make(map[types.RouteType]bool, len(kinds))
	for _, k := range kinds {
		keep[k] = true
	}
	routes := c.Routes[:0:0]
	for _, r := range c.Routes {
		if keep[r.Type] {
			routes = append(routes, r)
		}
	}
	c.Routes = routes
}

// Clone 深拷贝配置
func (c *Config) Clone() *Config {
	out := *c
	out.Routes = make([]RouteConfig, len(c.Routes))
	for i, r := range c.Routes {
		out.Routes[i] = r.clone()
	}
	out.DNS.Static = make(map[string][]string, len(c.DNS.Static))
	for host, ips := range c.DNS.Static {
		out.DNS.Static[host] = append([]string(nil), ips...)
	}
	return &out
}

// 配置错误
var (
	// ErrNilConfig 配置为空
	ErrNilConfig = errors.New("config is nil")

	// ErrNoRoutes 没有配置路由
	ErrNoRoutes = errors.New("config: no routes configured")

	// ErrInvalidValue 配置值无效
	ErrInvalidValue = errors.New("config: invalid value")

	// ErrUnknownEnv 未知的环境名称
	ErrUnknownEnv = errors.New("config: unknown environment")
)

// invalid 包装无效值错误
func invalid(field string, value any) error {
	return fmt.Errorf("%w: %s=%v", ErrInvalidValue, field, value)
}
