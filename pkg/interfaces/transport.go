package interfaces

import (
	"context"
	"net"

	"github.com/dep2p/go-chatnet/pkg/types"
)

// StreamAndInfo 已建立的双向字节流及其连接信息
type StreamAndInfo struct {
	Stream net.Conn
	Info   types.ConnectionInfo
}

// Close 关闭字节流
func (s StreamAndInfo) Close() error {
	if s.Stream == nil {
		return nil
	}
	return s.Stream.Close()
}

// TransportConnector 传输层连接器
//
// 给定路由与 ALPN，建立一条已完成 TLS 的字节流。
// 实现必须无状态，可并发调用。
type TransportConnector interface {
	Connect(ctx context.Context, params *types.ConnectionParams, alpn types.Alpn) (StreamAndInfo, error)
}
