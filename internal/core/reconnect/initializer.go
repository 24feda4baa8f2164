package reconnect

import (
	"context"

	"github.com/dep2p/go-chatnet/internal/core/connmgr"
	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// Connector 建立一个会话
type Connector interface {
	Connect(ctx context.Context) (pkgif.Session, error)
}

// ServiceInitializer 通过连接管理器建立服务会话
type ServiceInitializer struct {
	service   pkgif.ServiceConnector
	transport pkgif.TransportConnector
	manager   pkgif.ConnectionManager
}

var _ Connector = (*ServiceInitializer)(nil)

// NewServiceInitializer 创建服务初始化器
func NewServiceInitializer(service pkgif.ServiceConnector, transport pkgif.TransportConnector, manager pkgif.ConnectionManager) *ServiceInitializer {
	return &ServiceInitializer{
		service:   service,
		transport: transport,
		manager:   manager,
	}
}

// Connect 在管理器选出的路由上建立传输连接并启动会话
func (i *ServiceInitializer) Connect(ctx context.Context) (pkgif.Session, error) {
	return connmgr.Connect(ctx, i.manager, i.Attempt)
}

// Attempt 在指定路由上建立传输连接并启动会话，会话启动失败时关闭字节流
func (i *ServiceInitializer) Attempt(ctx context.Context, params *types.ConnectionParams) (pkgif.Session, error) {
	si, err := i.transport.Connect(ctx, params, i.service.Alpn())
	if err != nil {
		return nil, err
	}
	session, err := i.service.StartSession(ctx, si.Stream, params, si.Info)
	if err != nil {
		_ = si.Close()
		return nil, err
	}
	logger.Debug("会话已启动", "info", si.Info.Description())
	return session, nil
}
