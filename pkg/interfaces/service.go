package interfaces

import (
	"context"
	"net"

	"github.com/dep2p/go-chatnet/pkg/types"
)

// Session 一个存活的服务会话
type Session interface {
	// Info 返回会话所在连接的信息
	Info() types.ConnectionInfo

	// Done 会话结束时关闭
	Done() <-chan struct{}

	// Close 主动结束会话，可重复调用
	Close() error
}

// ServiceConnector 在已建立的字节流上启动服务会话
type ServiceConnector interface {
	// Alpn 返回该服务使用的 ALPN
	Alpn() types.Alpn

	// StartSession 在字节流上完成协议握手并启动会话
	//
	// 返回错误时由调用方关闭 stream。
	StartSession(ctx context.Context, stream net.Conn, params *types.ConnectionParams, info types.ConnectionInfo) (Session, error)
}

// ServiceStateObserver 服务状态观察者（指标）
type ServiceStateObserver interface {
	ObserveServiceState(service string, state string)
}
