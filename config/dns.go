package config

import (
	"net/netip"
	"time"
)

// DNSConfig 解析配置
type DNSConfig struct {
	// CacheTTL 缓存 TTL
	CacheTTL Duration `json:"cache_ttl" koanf:"cache_ttl"`

	// CacheSize 缓存条目上限
	CacheSize int `json:"cache_size" koanf:"cache_size"`

	// LookupTimeout 单个解析策略的超时
	LookupTimeout Duration `json:"lookup_timeout" koanf:"lookup_timeout"`

	// UDPServer UDP 解析服务器，空表示禁用
	UDPServer string `json:"udp_server" koanf:"udp_server"`

	// DoHURL DNS-over-HTTPS 端点，空表示禁用
	DoHURL string `json:"doh_url" koanf:"doh_url"`

	// SystemLookup 是否使用系统解析器
	SystemLookup bool `json:"system_lookup" koanf:"system_lookup"`

	// Static 静态回退表：主机名 → IP 列表
	Static map[string][]string `json:"static,omitempty" koanf:"static"`
}

// DefaultDNSConfig 返回默认解析配置
func DefaultDNSConfig() DNSConfig {
	return DNSConfig{
		CacheTTL:      Duration(5 * time.Minute),
		CacheSize:     256,
		LookupTimeout: Duration(5 * time.Second),
		UDPServer:     "1.1.1.1:53",
		DoHURL:        "https://1.1.1.1/dns-query",
		SystemLookup:  true,
		Static:        map[string][]string{},
	}
}

// Validate 验证解析配置
func (c DNSConfig) Validate() error {
	if c.CacheTTL <= 0 {
		return invalid("dns.cache_ttl", c.CacheTTL)
	}
	if c.CacheSize <= 0 {
		return invalid("dns.cache_size", c.CacheSize)
	}
	if c.LookupTimeout <= 0 {
		return invalid("dns.lookup_timeout", c.LookupTimeout)
	}
	_, err := c.StaticAddrs()
	return err
}

// StaticAddrs 解析静态回退表
func (c DNSConfig) StaticAddrs() (map[string][]netip.Addr, error) {
	out := make(map[string][]netip.Addr, len(c.Static))
	for host, ips := range c.Static {
		for _, s := range ips {
			ip, err := netip.ParseAddr(s)
			if err != nil {
				return nil, invalid("dns.static."+host, s)
			}
			out[host] = append(out[host], ip)
		}
	}
	return out, nil
}
