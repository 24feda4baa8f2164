package types

import (
	"fmt"
	"net/netip"
)

// ============================================================================
//                              Host - 连接地址
// ============================================================================

// Host 域名或具体 IP
type Host struct {
	domain string
	ip     netip.Addr
}

// DomainHost 创建域名地址
func DomainHost(name string) Host {
	return Host{domain: name}
}

// IPHost 创建 IP 地址
func IPHost(ip netip.Addr) Host {
	return Host{ip: ip.Unmap()}
}

// ParseHost 将 IP 字面量解析为 IP 地址，否则视为域名
func ParseHost(s string) Host {
	if ip, err := netip.ParseAddr(s); err == nil {
		return IPHost(ip)
	}
	return DomainHost(s)
}

// IP 返回 IP 地址，域名时 ok 为 false
func (h Host) IP() (netip.Addr, bool) {
	return h.ip, h.ip.IsValid()
}

// IPType 返回地址族，域名为 Unknown
func (h Host) IPType() IPType {
	switch {
	case h.ip.Is4():
		return IPTypeV4
	case h.ip.Is6():
		return IPTypeV6
	default:
		return IPTypeUnknown
	}
}

// String 返回地址字符串
func (h Host) String() string {
	if h.ip.IsValid() {
		return h.ip.String()
	}
	return h.domain
}

// ============================================================================
//                              ConnectionInfo - 连接信息
// ============================================================================

// ConnectionInfo 描述一条已建立的连接是如何建立的
type ConnectionInfo struct {
	// RouteType 实际使用的路由
	RouteType RouteType

	// DNSSource 地址来源
	DNSSource DNSSource

	// Address 实际连接的地址
	Address Host
}

// IPType 返回地址族
func (i ConnectionInfo) IPType() IPType {
	return i.Address.IPType()
}

// Description 返回用于日志的描述
//
//	route=direct;dns_source=cache;ip_type=V4
func (i ConnectionInfo) Description() string {
	return fmt.Sprintf("route=%s;dns_source=%s;ip_type=%s", i.RouteType, i.DNSSource, i.IPType())
}
