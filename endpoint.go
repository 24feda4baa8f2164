package chatnet

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-chatnet/internal/core/connmgr"
	"github.com/dep2p/go-chatnet/internal/core/reconnect"
	"github.com/dep2p/go-chatnet/internal/protocol/chatws"
	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              EndpointConnection
// ════════════════════════════════════════════════════════════════════════════

// EndpointConnection 到聊天服务端点的多路由连接
//
// 每次 Connect 从第一条路由开始，按配置顺序回退。
type EndpointConnection struct {
	manager     *connmgr.MultiRouteManager
	initializer *reconnect.ServiceInitializer
}

// endpointParams EndpointConnection 依赖参数
type endpointParams struct {
	fx.In

	Manager     *connmgr.MultiRouteManager
	Initializer *reconnect.ServiceInitializer
}

// NewEndpointConnection 创建端点连接
func NewEndpointConnection(p endpointParams) *EndpointConnection {
	return &EndpointConnection{manager: p.Manager, initializer: p.Initializer}
}

// Routes 返回按尝试顺序排列的路由
func (e *EndpointConnection) Routes() []*types.ConnectionParams {
	routes := e.manager.Routes()
	out := make([]*types.ConnectionParams, len(routes))
	for i, r := range routes {
		out[i] = r.Params()
	}
	return out
}

// RouteState 返回各路由的节流状态
func (e *EndpointConnection) RouteState() []connmgr.AttemptState {
	routes := e.manager.Routes()
	out := make([]connmgr.AttemptState, len(routes))
	for i, r := range routes {
		out[i] = r.State()
	}
	return out
}

// Connect 完成一轮连接，不做重连
func (e *EndpointConnection) Connect(ctx context.Context) (*chatws.ChatSession, error) {
	session, err := e.initializer.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return chatSession(session)
}

// RouteReport 诊断模式下一条路由的结果
type RouteReport struct {
	Route   types.RouteType
	SNI     string
	Host    string
	Info    types.ConnectionInfo
	Err     error
	Class   types.ErrorClass
	Elapsed time.Duration
}

// OK 是否成功
func (r RouteReport) OK() bool {
	return r.Err == nil
}

// TryAllRoutes 在每条路由上并发地独立建立一次会话，成功的会话随即关闭
func (e *EndpointConnection) TryAllRoutes(ctx context.Context) []RouteReport {
	outcomes := e.manager.TryAllRoutes(ctx, func(ctx context.Context, params *types.ConnectionParams) (any, error) {
		return e.initializer.Attempt(ctx, params)
	})

	reports := make([]RouteReport, len(outcomes))
	for i, o := range outcomes {
		r := RouteReport{
			Route:   o.Params.RouteType(),
			SNI:     o.Params.SNI(),
			Host:    o.Params.HostPort(),
			Err:     o.Err,
			Elapsed: o.Elapsed,
		}
		if o.OK() {
			if s, ok := o.Value.(pkgif.Session); ok {
				r.Info = s.Info()
				_ = s.Close()
			}
		} else {
			r.Class = pkgif.Classify(o.Err)
		}
		logger.Info("路由诊断",
			"route", r.Route,
			"ok", r.OK(),
			"elapsed", r.Elapsed,
			"err", r.Err)
		reports[i] = r
	}
	return reports
}

// chatSession 将会话转换为聊天会话
func chatSession(s pkgif.Session) (*chatws.ChatSession, error) {
	cs, ok := s.(*chatws.ChatSession)
	if !ok {
		_ = s.Close()
		return nil, ErrUnexpectedSession
	}
	return cs, nil
}
