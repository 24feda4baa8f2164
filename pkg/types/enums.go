package types

// ============================================================================
//                              RouteType - 路由类型
// ============================================================================

// RouteType 路由类型
//
// 描述连接所经过的物理路径，用于日志与诊断。
type RouteType int

const (
	// RouteDirect 直连服务端
	RouteDirect RouteType = iota
	// RouteProxyF 经 F 类域前置代理
	RouteProxyF
	// RouteProxyG 经 G 类域前置代理
	RouteProxyG
	// RouteTLSProxy 经通用 TLS 代理
	RouteTLSProxy
	// RouteTest 测试路由
	RouteTest
)

// String 返回路由类型的字符串表示
func (r RouteType) String() string {
	switch r {
	case RouteDirect:
		return "direct"
	case RouteProxyF:
		return "proxyf"
	case RouteProxyG:
		return "proxyg"
	case RouteTLSProxy:
		return "tlsproxy"
	case RouteTest:
		return "test"
	default:
		return "unknown"
	}
}

// ParseRouteType 解析路由类型名称
func ParseRouteType(s string) (RouteType, error) {
	for r := RouteDirect; r <= RouteTest; r++ {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, ErrUnknownRouteType
}

// MarshalText 实现 encoding.TextMarshaler
func (r RouteType) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (r *RouteType) UnmarshalText(b []byte) error {
	v, err := ParseRouteType(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ============================================================================
//                              DNSSource - 地址来源
// ============================================================================

// DNSSource 解析结果来源
type DNSSource int

const (
	// DNSSourceCache 本地缓存
	DNSSourceCache DNSSource = iota
	// DNSSourceUDPLookup UDP 查询
	DNSSourceUDPLookup
	// DNSSourceDNSOverHTTPSLookup DoH 查询
	DNSSourceDNSOverHTTPSLookup
	// DNSSourceSystemLookup 系统解析器
	DNSSourceSystemLookup
	// DNSSourceStatic 静态表或 IP 字面量
	DNSSourceStatic
	// DNSSourceTest 测试
	DNSSourceTest
)

// String 返回来源的字符串表示
func (s DNSSource) String() string {
	switch s {
	case DNSSourceCache:
		return "cache"
	case DNSSourceUDPLookup:
		return "udplookup"
	case DNSSourceDNSOverHTTPSLookup:
		return "dnsoverhttpslookup"
	case DNSSourceSystemLookup:
		return "systemlookup"
	case DNSSourceStatic:
		return "static"
	case DNSSourceTest:
		return "test"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              IPType - 地址族
// ============================================================================

// IPType 地址族
type IPType int

const (
	// IPTypeUnknown 未知（域名或未解析）
	IPTypeUnknown IPType = iota
	// IPTypeV4 IPv4
	IPTypeV4
	// IPTypeV6 IPv6
	IPTypeV6
)

// String 返回地址族的字符串表示
func (t IPType) String() string {
	switch t {
	case IPTypeV4:
		return "V4"
	case IPTypeV6:
		return "V6"
	default:
		return "Unknown"
	}
}

// ============================================================================
//                              ErrorClass - 错误分类
// ============================================================================

// ErrorClass 错误分类
//
// Retryable 表示换一条路由或稍后重试可能成功；
// Fatal 表示重试无意义，应立即向上报告。
type ErrorClass int

const (
	// ErrorClassRetryable 可重试
	ErrorClassRetryable ErrorClass = iota
	// ErrorClassFatal 致命
	ErrorClassFatal
)

// String 返回错误分类的字符串表示
func (c ErrorClass) String() string {
	if c == ErrorClassFatal {
		return "fatal"
	}
	return "retryable"
}

// ============================================================================
//                              Alpn - 应用层协议协商
// ============================================================================

// Alpn TLS 握手时请求的应用层协议
type Alpn int

const (
	// AlpnHTTP11 http/1.1
	AlpnHTTP11 Alpn = iota
	// AlpnHTTP2 h2
	AlpnHTTP2
)

// String 返回协议标识，可直接用于 tls.Config.NextProtos
func (a Alpn) String() string {
	if a == AlpnHTTP2 {
		return "h2"
	}
	return "http/1.1"
}

// WireBytes 返回长度前缀的 ALPN 线上编码
func (a Alpn) WireBytes() []byte {
	id := a.String()
	return append([]byte{byte(len(id))}, id...)
}
