package chatnet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-chatnet/config"
	"github.com/dep2p/go-chatnet/internal/core/eventbus"
	"github.com/dep2p/go-chatnet/internal/core/metrics"
	"github.com/dep2p/go-chatnet/internal/core/reconnect"
	"github.com/dep2p/go-chatnet/internal/protocol/chatws"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// startTimeout Fx 应用启动的超时
const startTimeout = 15 * time.Second

// ════════════════════════════════════════════════════════════════════════════
//                              Client
// ════════════════════════════════════════════════════════════════════════════

// Client 聊天服务连接客户端
//
// Client 持有一个自动重连的服务；Close 之后不可再次使用。
type Client struct {
	cfg *config.Config
	app *fx.App

	service   *reconnect.Service
	endpoint  *EndpointConnection
	bus       *eventbus.Bus
	collector *metrics.Collector

	mu             sync.Mutex
	started        bool
	serviceStarted bool
	closed         bool
}

// New 创建客户端，不建立连接
func New(opts ...Option) (*Client, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}
	cfg, err := o.resolveConfig()
	if err != nil {
		return nil, err
	}

	c := &Client{cfg: cfg}
	app, err := buildFxApp(o, cfg, c)
	if err != nil {
		return nil, err
	}
	c.app = app
	return c, nil
}

// Config 返回生效配置的副本
func (c *Client) Config() *config.Config {
	return c.cfg.Clone()
}

// Endpoint 返回端点连接
func (c *Client) Endpoint() *EndpointConnection {
	return c.endpoint
}

// Metrics 返回指标收集器
func (c *Client) Metrics() *metrics.Collector {
	return c.collector
}

// Start 启动内部组件与重连服务，可重复调用
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.startAppLocked(ctx); err != nil {
		return err
	}
	if c.serviceStarted {
		return nil
	}
	if err := c.service.Start(); err != nil {
		return err
	}
	c.serviceStarted = true
	logger.Info("客户端已启动", "env", c.cfg.Env, "routes", len(c.cfg.Routes))
	return nil
}

// startAppLocked 启动 Fx 应用，调用方持有 c.mu
func (c *Client) startAppLocked(ctx context.Context) error {
	if c.closed {
		return ErrClientClosed
	}
	if c.started {
		return nil
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := c.app.Start(startCtx); err != nil {
		logger.Error("客户端启动失败", "err", err)
		return fmt.Errorf("start: %w", err)
	}
	c.started = true
	return nil
}

func (c *Client) startApp(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startAppLocked(ctx)
}

// Connect 启动客户端并等待会话建立
//
// 可重试的失败由重连服务在后台处理，Connect 一直等到 Active、
// 致命错误或 ctx 结束。
func (c *Client) Connect(ctx context.Context) (*chatws.ChatSession, error) {
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	session, err := c.service.WaitActive(ctx)
	if err != nil {
		return nil, err
	}
	return chatSession(session)
}

// ConnectOnce 按路由顺序完成一轮连接，不启动重连服务
//
// 失败时直接返回多路由错误；返回的会话由调用方关闭。
func (c *Client) ConnectOnce(ctx context.Context) (*chatws.ChatSession, error) {
	if err := c.startApp(ctx); err != nil {
		return nil, err
	}
	return c.endpoint.Connect(ctx)
}

// Session 返回当前会话
func (c *Client) Session() (*chatws.ChatSession, error) {
	session, err := c.service.Session()
	if err != nil {
		return nil, err
	}
	cs, ok := session.(*chatws.ChatSession)
	if !ok {
		return nil, ErrUnexpectedSession
	}
	return cs, nil
}

// State 返回重连服务状态
func (c *Client) State() reconnect.State {
	return c.service.State()
}

// Err 返回终止原因
func (c *Client) Err() error {
	return c.service.Err()
}

// NetworkChanged 通知网络环境变化
func (c *Client) NetworkChanged(reason string) {
	if reason == "" {
		reason = "manual"
	}
	c.bus.Emit(types.NetworkChangeEvent{Reason: reason, Timestamp: time.Now()})
}

// TryAllRoutes 对每条路由做一次独立的诊断连接
func (c *Client) TryAllRoutes(ctx context.Context) ([]RouteReport, error) {
	if err := c.startApp(ctx); err != nil {
		return nil, err
	}
	return c.endpoint.TryAllRoutes(ctx), nil
}

// Close 断开会话并停止所有组件，可重复调用
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.service.Cancel()
	if !c.started {
		return nil
	}
	if err := c.app.Stop(ctx); err != nil {
		logger.Warn("客户端停止异常", "err", err)
		return err
	}
	logger.Info("客户端已关闭")
	return nil
}
