package transport

import (
	"context"
	"net"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// PipeConnector 内存连接器
//
// 每次 Connect 创建一对 net.Pipe，服务端一侧交给 Serve。
// Fail 非空且返回错误时不创建连接。
type PipeConnector struct {
	// Serve 处理服务端一侧，需负责关闭 server
	Serve func(params *types.ConnectionParams, server net.Conn)

	// Fail 按路由注入失败
	Fail func(params *types.ConnectionParams) error
}

var _ pkgif.TransportConnector = (*PipeConnector)(nil)

// Connect 实现 TransportConnector
func (p *PipeConnector) Connect(ctx context.Context, params *types.ConnectionParams, _ types.Alpn) (pkgif.StreamAndInfo, error) {
	if err := ctx.Err(); err != nil {
		return pkgif.StreamAndInfo{}, &ConnectError{Kind: KindAborted, Route: params.RouteType(), Host: params.Host(), Err: err}
	}
	if p.Fail != nil {
		if err := p.Fail(params); err != nil {
			return pkgif.StreamAndInfo{}, err
		}
	}

	client, server := net.Pipe()
	if p.Serve != nil {
		go p.Serve(params, server)
	} else {
		go func() {
			_, _ = drain(server)
		}()
	}
	return pkgif.StreamAndInfo{
		Stream: client,
		Info: types.ConnectionInfo{
			RouteType: params.RouteType(),
			DNSSource: types.DNSSourceTest,
			Address:   types.ParseHost(params.Host()),
		},
	}, nil
}

// drain 读到对端关闭为止
func drain(c net.Conn) (int64, error) {
	defer c.Close()
	buf := make([]byte, 1024)
	var n int64
	for {
		k, err := c.Read(buf)
		n += int64(k)
		if err != nil {
			return n, err
		}
	}
}
