package chatws

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/lib/log"
	"github.com/dep2p/go-chatnet/pkg/types"
)

var logger = log.Logger("protocol/chatws")

// errStreamUsed 同一个字节流只能用于一次升级
var errStreamUsed = errors.New("chatws: stream already used")

// ============================================================================
//                              Connector
// ============================================================================

// Connector WebSocket 服务连接器
type Connector struct {
	cfg   Config
	auth  types.Auth
	clock clock.Clock
}

var _ pkgif.ServiceConnector = (*Connector)(nil)

// Option 连接器选项
type Option func(*Connector)

// WithAuth 设置凭据
func WithAuth(auth types.Auth) Option {
	return func(c *Connector) { c.auth = auth }
}

// WithClock 设置时钟
func WithClock(cl clock.Clock) Option {
	return func(c *Connector) { c.clock = cl }
}

// NewConnector 创建连接器
func NewConnector(cfg Config, opts ...Option) (*Connector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Connector{cfg: cfg, clock: clock.New()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Alpn 实现 ServiceConnector
func (c *Connector) Alpn() types.Alpn {
	return types.AlpnHTTP11
}

// StartSession 实现 ServiceConnector
func (c *Connector) StartSession(ctx context.Context, stream net.Conn, params *types.ConnectionParams, info types.ConnectionInfo) (pkgif.Session, error) {
	req, err := c.upgradeRequest(ctx, params)
	if err != nil {
		return nil, &HandshakeError{Route: params.RouteType(), Err: err}
	}

	used := false
	dialer := websocket.Dialer{
		// 字节流已经完成 TLS，这里只做 HTTP 升级
		NetDialContext: func(context.Context, string, string) (net.Conn, error) {
			if used {
				return nil, errStreamUsed
			}
			used = true
			return stream, nil
		},
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	u := *req.URL
	u.Scheme = "ws"
	header := req.Header.Clone()
	if req.Host != "" && req.Host != u.Host {
		header.Set("Host", req.Host)
	}

	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		herr := c.classifyHandshake(params, resp, err)
		logger.Debug("WebSocket 升级失败",
			"route", params.RouteType(),
			"status", herr.Status,
			"class", herr.Classify(),
			"err", err)
		return nil, herr
	}

	logger.Debug("WebSocket 升级成功", "route", params.RouteType(), "path", u.Path)
	return newSession(conn, info, c.cfg, c.clock), nil
}

// upgradeRequest 构建升级请求并应用路由装饰器
func (c *Connector) upgradeRequest(ctx context.Context, params *types.ConnectionParams) (*http.Request, error) {
	host := params.Host()
	if params.Port() != 443 {
		host = params.HostPort()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+host+c.cfg.Endpoint, nil)
	if err != nil {
		return nil, err
	}
	if !c.auth.IsZero() {
		req.Header.Set("Authorization", types.BasicAuthorization(c.auth.Username, c.auth.Password))
	}
	return params.Decorators().Decorate(req), nil
}

func (c *Connector) classifyHandshake(params *types.ConnectionParams, resp *http.Response, err error) *HandshakeError {
	herr := &HandshakeError{Route: params.RouteType(), Err: err}
	if resp == nil {
		return herr
	}
	herr.Status = resp.StatusCode
	if h := params.ConfirmationHeader(); h != "" && resp.Header.Get(h) == "" {
		herr.Intermediary = true
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		herr.Retry = parseRetryAfter(resp.Header.Get("Retry-After"), c.clock.Now())
	}
	return herr
}
