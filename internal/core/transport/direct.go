package transport

import (
	"context"
	"crypto/tls"
	"net"
	"net/netip"

	"go.uber.org/multierr"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/lib/log"
	"github.com/dep2p/go-chatnet/pkg/types"
)

var logger = log.Logger("core/transport")

// ============================================================================
//                              ConnectorFunc
// ============================================================================

// ConnectorFunc 函数适配器
type ConnectorFunc func(ctx context.Context, params *types.ConnectionParams, alpn types.Alpn) (pkgif.StreamAndInfo, error)

// Connect 实现 TransportConnector
func (f ConnectorFunc) Connect(ctx context.Context, params *types.ConnectionParams, alpn types.Alpn) (pkgif.StreamAndInfo, error) {
	return f(ctx, params, alpn)
}

// ============================================================================
//                              DirectConnector
// ============================================================================

// DirectConnector TCP + TLS 连接器
type DirectConnector struct {
	resolver pkgif.DNSResolver
	cfg      Config
	dialer   *net.Dialer
}

var _ pkgif.TransportConnector = (*DirectConnector)(nil)

// NewDirectConnector 创建直连连接器
func NewDirectConnector(resolver pkgif.DNSResolver, cfg Config) *DirectConnector {
	return &DirectConnector{
		resolver: resolver,
		cfg:      cfg,
		dialer: &net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: cfg.KeepAlive,
		},
	}
}

// Connect 解析、拨号并完成 TLS 握手
func (c *DirectConnector) Connect(ctx context.Context, params *types.ConnectionParams, alpn types.Alpn) (pkgif.StreamAndInfo, error) {
	if params == nil {
		return pkgif.StreamAndInfo{}, ErrNilParams
	}
	fail := func(kind ErrorKind, err error) (pkgif.StreamAndInfo, error) {
		if ctx.Err() != nil && kind != KindCertificate && kind != KindInvalidConfig {
			kind, err = KindAborted, ctx.Err()
		}
		return pkgif.StreamAndInfo{}, &ConnectError{Kind: kind, Route: params.RouteType(), Host: params.Host(), Err: err}
	}

	tlsCfg, err := clientTLSConfig(params, alpn)
	if err != nil {
		return fail(KindInvalidConfig, err)
	}

	lookup, err := c.resolver.LookupIP(ctx, params.Host())
	if err != nil {
		return fail(KindDNS, err)
	}

	conn, addr, err := c.dialAny(ctx, lookup.Addrs(), params.Port())
	if err != nil {
		return fail(KindTCP, err)
	}

	tlsConn := tls.Client(conn, tlsCfg)
	hctx := ctx
	if c.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
		defer cancel()
	}
	if err := tlsConn.HandshakeContext(hctx); err != nil {
		_ = conn.Close()
		if isCertError(err) {
			return fail(KindCertificate, err)
		}
		return fail(KindTLSHandshake, err)
	}

	info := types.ConnectionInfo{
		RouteType: params.RouteType(),
		DNSSource: lookup.Source,
		Address:   types.IPHost(addr),
	}
	logger.Debug("传输连接已建立",
		"route", params.RouteType(),
		"addr", addr,
		"alpn", tlsConn.ConnectionState().NegotiatedProtocol,
		"info", info.Description())
	return pkgif.StreamAndInfo{Stream: tlsConn, Info: info}, nil
}

// dialAny 依次拨号，返回第一个成功的连接
func (c *DirectConnector) dialAny(ctx context.Context, addrs []netip.Addr, port uint16) (net.Conn, netip.Addr, error) {
	if len(addrs) == 0 {
		return nil, netip.Addr{}, ErrNoAddresses
	}

	var errs error
	for _, addr := range addrs {
		conn, err := c.dialer.DialContext(ctx, "tcp", netip.AddrPortFrom(addr, port).String())
		if err == nil {
			return conn, addr, nil
		}
		logger.Debug("拨号失败", "addr", addr, "err", err)
		errs = multierr.Append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, netip.Addr{}, errs
}

// clientTLSConfig 构建客户端 TLS 配置
func clientTLSConfig(params *types.ConnectionParams, alpn types.Alpn) (*tls.Config, error) {
	pool, err := params.Certs().CertPool()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		ServerName: params.SNI(),
		RootCAs:    pool,
		NextProtos: []string{alpn.String()},
		MinVersion: tls.VersionTLS12,
	}, nil
}
