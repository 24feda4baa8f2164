package interfaces

import (
	"context"
	"net/netip"

	"github.com/dep2p/go-chatnet/pkg/types"
)

// LookupResult 解析结果
type LookupResult struct {
	// IPv4 IPv4 地址列表
	IPv4 []netip.Addr

	// IPv6 IPv6 地址列表
	IPv6 []netip.Addr

	// Source 结果来源
	Source types.DNSSource
}

// Empty 结果是否为空
func (r LookupResult) Empty() bool {
	return len(r.IPv4) == 0 && len(r.IPv6) == 0
}

// Addrs 返回交替排列的地址，IPv6 优先
func (r LookupResult) Addrs() []netip.Addr {
	out := make([]netip.Addr, 0, len(r.IPv4)+len(r.IPv6))
	for i := 0; i < len(r.IPv4) || i < len(r.IPv6); i++ {
		if i < len(r.IPv6) {
			out = append(out, r.IPv6[i])
		}
		if i < len(r.IPv4) {
			out = append(out, r.IPv4[i])
		}
	}
	return out
}

// DNSResolver 主机名解析
type DNSResolver interface {
	// LookupIP 解析主机名
	//
	// 失败时返回的错误总是 Retryable。
	LookupIP(ctx context.Context, host string) (LookupResult, error)
}
