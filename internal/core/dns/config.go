package dns

import (
	"errors"
	"net/netip"
	"time"
)

// ErrInvalidConfig 无效配置
var ErrInvalidConfig = errors.New("dns: invalid config")

// 默认值
const (
	// DefaultCacheTTL 默认缓存 TTL
	DefaultCacheTTL = 5 * time.Minute

	// DefaultCacheSize 默认缓存条目数
	DefaultCacheSize = 256

	// DefaultLookupTimeout 单个策略的超时
	DefaultLookupTimeout = 5 * time.Second

	// DefaultUDPServer 默认 UDP 解析服务器
	DefaultUDPServer = "1.1.1.1:53"

	// DefaultDoHURL 默认 DoH 端点
	DefaultDoHURL = "https://1.1.1.1/dns-query"
)

// Config 解析器配置
type Config struct {
	// CacheTTL 缓存 TTL
	CacheTTL time.Duration

	// CacheSize 缓存条目上限
	CacheSize int

	// LookupTimeout 单个策略的超时
	LookupTimeout time.Duration

	// UDPServer UDP 解析服务器 ip:port，空表示禁用
	UDPServer string

	// DoHURL DoH 端点，空表示禁用
	DoHURL string

	// SystemLookup 是否使用系统解析器
	SystemLookup bool

	// Static 静态回退表
	Static map[string][]netip.Addr
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		CacheTTL:      DefaultCacheTTL,
		CacheSize:     DefaultCacheSize,
		LookupTimeout: DefaultLookupTimeout,
		UDPServer:     DefaultUDPServer,
		DoHURL:        DefaultDoHURL,
		SystemLookup:  true,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.CacheTTL <= 0 || c.CacheSize <= 0 || c.LookupTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}
