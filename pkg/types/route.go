package types

import (
	"net"
	"strconv"
)

// ============================================================================
//                              ConnectionParams - 路由描述
// ============================================================================

// ConnectionParams 描述一条到服务端的路由
//
// 创建后不可变，通过 With* 方法得到修改后的副本。
// 以指针形式在多个管理器与 goroutine 之间共享。
type ConnectionParams struct {
	routeType          RouteType
	sni                string
	host               string
	port               uint16
	decorators         DecoratorSeq
	certs              RootCertificates
	confirmationHeader string
}

// NewConnectionParams 创建路由描述
//
// sni 为 TLS 握手使用的服务器名；host 为实际连接的主机（域名或 IP）。
func NewConnectionParams(
	routeType RouteType,
	sni, host string,
	port uint16,
	decorators DecoratorSeq,
	certs RootCertificates,
) (*ConnectionParams, error) {
	if port == 0 {
		return nil, ErrZeroPort
	}
	if host == "" {
		return nil, ErrEmptyHost
	}
	if sni == "" {
		sni = host
	}
	p := &ConnectionParams{
		routeType: routeType,
		sni:       sni,
		host:      host,
		port:      port,
		certs:     certs,
	}
	if len(decorators) > 0 {
		p.decorators = append(DecoratorSeq(nil), decorators...)
	}
	return p, nil
}

// RouteType 返回路由类型
func (p *ConnectionParams) RouteType() RouteType { return p.routeType }

// SNI 返回 TLS 服务器名
func (p *ConnectionParams) SNI() string { return p.sni }

// Host 返回连接主机
func (p *ConnectionParams) Host() string { return p.host }

// Port 返回连接端口
func (p *ConnectionParams) Port() uint16 { return p.port }

// HostPort 返回 host:port
func (p *ConnectionParams) HostPort() string {
	return net.JoinHostPort(p.host, strconv.Itoa(int(p.port)))
}

// Decorators 返回装饰器序列的副本
func (p *ConnectionParams) Decorators() DecoratorSeq {
	return append(DecoratorSeq(nil), p.decorators...)
}

// Certs 返回信任锚
func (p *ConnectionParams) Certs() RootCertificates { return p.certs }

// ConfirmationHeader 返回连接确认头名称，空表示不校验
//
// 服务端在所有响应中附带该头；握手失败且响应中缺少它时，
// 说明拒绝来自中间设备而不是服务端。
func (p *ConnectionParams) ConfirmationHeader() string { return p.confirmationHeader }

// WithDecorator 返回追加了装饰器的副本
func (p *ConnectionParams) WithDecorator(d HTTPRequestDecorator) *ConnectionParams {
	c := *p
	c.decorators = p.decorators.With(d)
	return &c
}

// WithCerts 返回替换了信任锚的副本
func (p *ConnectionParams) WithCerts(certs RootCertificates) *ConnectionParams {
	c := *p
	c.certs = certs
	return &c
}

// WithConfirmationHeader 返回设置了连接确认头的副本
func (p *ConnectionParams) WithConfirmationHeader(name string) *ConnectionParams {
	c := *p
	c.confirmationHeader = name
	return &c
}

// String 返回用于日志的简短描述
func (p *ConnectionParams) String() string {
	return p.routeType.String() + "(" + p.sni + "@" + p.HostPort() + ")"
}
