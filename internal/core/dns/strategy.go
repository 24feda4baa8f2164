package dns

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"

	mdns "github.com/miekg/dns"
	"golang.org/x/sync/errgroup"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// Strategy 一种在线解析方式
type Strategy interface {
	// Source 返回结果来源标记
	Source() types.DNSSource

	// Lookup 解析主机名
	Lookup(ctx context.Context, host string) (pkgif.LookupResult, error)
}

// exchangeFunc 发送一个查询并返回应答
type exchangeFunc func(ctx context.Context, q *mdns.Msg) (*mdns.Msg, error)

// queryBoth 并行查询 A 与 AAAA，任一成功即可
func queryBoth(ctx context.Context, host string, exchange exchangeFunc) (pkgif.LookupResult, error) {
	var res pkgif.LookupResult
	var g errgroup.Group

	g.Go(func() error {
		addrs, err := query(ctx, host, mdns.TypeA, exchange)
		res.IPv4 = addrs
		return err
	})
	g.Go(func() error {
		addrs, err := query(ctx, host, mdns.TypeAAAA, exchange)
		res.IPv6 = addrs
		return err
	})

	err := g.Wait()
	if !res.Empty() {
		return res, nil
	}
	if err == nil {
		err = ErrNoRecords
	}
	return res, err
}

func query(ctx context.Context, host string, qtype uint16, exchange exchangeFunc) ([]netip.Addr, error) {
	q := new(mdns.Msg)
	q.SetQuestion(mdns.Fqdn(host), qtype)
	q.RecursionDesired = true

	r, err := exchange(ctx, q)
	if err != nil {
		return nil, err
	}
	if r.Rcode != mdns.RcodeSuccess {
		return nil, fmt.Errorf("%w: %s", ErrBadRcode, mdns.RcodeToString[r.Rcode])
	}
	return answerAddrs(r, qtype), nil
}

// answerAddrs 提取应答中的地址记录，忽略 CNAME 等其他记录
func answerAddrs(r *mdns.Msg, qtype uint16) []netip.Addr {
	var out []netip.Addr
	for _, rr := range r.Answer {
		switch v := rr.(type) {
		case *mdns.A:
			if qtype != mdns.TypeA {
				continue
			}
			if ip, ok := netip.AddrFromSlice(v.A.To4()); ok {
				out = append(out, ip)
			}
		case *mdns.AAAA:
			if qtype != mdns.TypeAAAA {
				continue
			}
			if ip, ok := netip.AddrFromSlice(v.AAAA.To16()); ok {
				out = append(out, ip)
			}
		}
	}
	return out
}

// ============================================================================
//                              UDP
// ============================================================================

// UDPStrategy 通过 UDP 直接查询指定服务器
type UDPStrategy struct {
	server string
	client *mdns.Client
}

// NewUDPStrategy 创建 UDP 策略，server 为 ip:port
func NewUDPStrategy(server string) *UDPStrategy {
	return &UDPStrategy{
		server: server,
		client: &mdns.Client{Net: "udp"},
	}
}

// Source 实现 Strategy
func (s *UDPStrategy) Source() types.DNSSource { return types.DNSSourceUDPLookup }

// Lookup 实现 Strategy
func (s *UDPStrategy) Lookup(ctx context.Context, host string) (pkgif.LookupResult, error) {
	return queryBoth(ctx, host, func(ctx context.Context, q *mdns.Msg) (*mdns.Msg, error) {
		r, _, err := s.client.ExchangeContext(ctx, q, s.server)
		return r, err
	})
}

// ============================================================================
//                              DNS-over-HTTPS
// ============================================================================

const dohContentType = "application/dns-message"

// maxDoHResponse DNS 报文上限
const maxDoHResponse = 65535

// DoHStrategy 通过 DNS-over-HTTPS（RFC 8484 POST）查询
type DoHStrategy struct {
	url    string
	client *http.Client
}

// NewDoHStrategy 创建 DoH 策略
//
// client 为 nil 时使用 http.DefaultClient。
func NewDoHStrategy(url string, client *http.Client) *DoHStrategy {
	if client == nil {
		client = http.DefaultClient
	}
	return &DoHStrategy{url: url, client: client}
}

// Source 实现 Strategy
func (s *DoHStrategy) Source() types.DNSSource { return types.DNSSourceDNSOverHTTPSLookup }

// Lookup 实现 Strategy
func (s *DoHStrategy) Lookup(ctx context.Context, host string) (pkgif.LookupResult, error) {
	return queryBoth(ctx, host, s.exchange)
}

func (s *DoHStrategy) exchange(ctx context.Context, q *mdns.Msg) (*mdns.Msg, error) {
	// RFC 8484 建议 ID 置 0 以利于 HTTP 缓存
	q.Id = 0
	packed, err := q.Pack()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(packed))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", dohContentType)
	req.Header.Set("Accept", dohContentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrDoHStatus, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDoHResponse))
	if err != nil {
		return nil, err
	}

	r := new(mdns.Msg)
	if err := r.Unpack(body); err != nil {
		return nil, err
	}
	return r, nil
}

// ============================================================================
//                              系统解析器
// ============================================================================

// SystemStrategy 使用操作系统解析器
type SystemStrategy struct {
	resolver *net.Resolver
}

// NewSystemStrategy 创建系统策略，resolver 为 nil 时使用 net.DefaultResolver
func NewSystemStrategy(resolver *net.Resolver) *SystemStrategy {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &SystemStrategy{resolver: resolver}
}

// Source 实现 Strategy
func (s *SystemStrategy) Source() types.DNSSource { return types.DNSSourceSystemLookup }

// Lookup 实现 Strategy
func (s *SystemStrategy) Lookup(ctx context.Context, host string) (pkgif.LookupResult, error) {
	addrs, err := s.resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return pkgif.LookupResult{}, err
	}
	return splitFamilies(addrs), nil
}

func splitFamilies(addrs []netip.Addr) pkgif.LookupResult {
	var res pkgif.LookupResult
	for _, a := range addrs {
		a = a.Unmap()
		if a.Is4() {
			res.IPv4 = append(res.IPv4, a)
		} else {
			res.IPv6 = append(res.IPv6, a)
		}
	}
	return res
}
