package chatnet

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/dep2p/go-chatnet/config"
	"github.com/dep2p/go-chatnet/internal/core/reconnect"
	"github.com/dep2p/go-chatnet/internal/core/transport"
	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              测试辅助
// ════════════════════════════════════════════════════════════════════════════

const confirmation = "X-Chat-Timestamp"

// chatServer 回显 WebSocket 服务，记录升级请求的路径
type chatServer struct {
	srv   *httptest.Server
	paths chan string
	auth  chan string
}

func newChatServer(t *testing.T, status int) *chatServer {
	t.Helper()
	s := &chatServer{paths: make(chan string, 16), auth: make(chan string, 16)}
	upgrader := websocket.Upgrader{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.paths <- r.URL.Path
		s.auth <- r.Header.Get("Authorization")
		w.Header().Set(confirmation, "1")
		if status != http.StatusSwitchingProtocols {
			w.WriteHeader(status)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

// dialer 把所有路由都连到测试服务，failing 中的路由返回 TCP 错误
func (s *chatServer) dialer(failing ...types.RouteType) fx.Option {
	fail := make(map[types.RouteType]bool, len(failing))
	for _, r := range failing {
		fail[r] = true
	}
	addr := s.srv.Listener.Addr().String()
	connect := transport.ConnectorFunc(func(ctx context.Context, params *types.ConnectionParams, _ types.Alpn) (pkgif.StreamAndInfo, error) {
		if fail[params.RouteType()] {
			return pkgif.StreamAndInfo{}, &transport.ConnectError{
				Kind:  transport.KindTCP,
				Route: params.RouteType(),
				Host:  params.Host(),
				Err:   errors.New("connection refused"),
			}
		}
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return pkgif.StreamAndInfo{}, err
		}
		return pkgif.StreamAndInfo{
			Stream: conn,
			Info: types.ConnectionInfo{
				RouteType: params.RouteType(),
				DNSSource: types.DNSSourceTest,
				Address:   types.ParseHost(params.Host()),
			},
		}, nil
	})
	return fx.Decorate(func(pkgif.TransportConnector) pkgif.TransportConnector { return connect })
}

func testConfig() *config.Config {
	cfg := config.Production()
	cfg.NetMon.Enabled = false
	cfg.Reconnect.Cooldown = config.Duration(50 * time.Millisecond)
	cfg.Routes = []config.RouteConfig{
		{Type: types.RouteDirect, Host: "direct.test", Port: 443, ConfirmationHeader: confirmation},
		{Type: types.RouteProxyF, Host: "front-f.test", Port: 443, PathPrefix: "/svc", ConfirmationHeader: confirmation},
	}
	return cfg
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.Close(ctx)
	})
	return c
}

func connectCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// ════════════════════════════════════════════════════════════════════════════
//                              连接
// ════════════════════════════════════════════════════════════════════════════

// TestClient_ConnectFallsBack 直连失败后经 ProxyF 建立会话
func TestClient_ConnectFallsBack(t *testing.T) {
	srv := newChatServer(t, http.StatusSwitchingProtocols)
	c := newTestClient(t,
		WithConfig(testConfig()),
		WithAuth("usrnm", "psswd"),
		WithFxOptions(srv.dialer(types.RouteDirect)),
	)

	ctx := connectCtx(t)
	session, err := c.Connect(ctx)
	require.NoError(t, err)

	assert.Equal(t, types.RouteProxyF, session.Info().RouteType)
	assert.Equal(t, "/svc/v1/websocket/", <-srv.paths)
	assert.Equal(t, "Basic dXNybm06cHNzd2Q=", <-srv.auth)
	assert.Equal(t, reconnect.StateActive, c.State().Kind)

	states := c.Endpoint().RouteState()
	require.Len(t, states, 2)
	assert.Equal(t, 1, states[0].ConsecutiveFailures)
	assert.Equal(t, 0, states[1].ConsecutiveFailures)

	require.NoError(t, session.SendText(ctx, "hello"))
	select {
	case msg := <-session.Incoming():
		assert.Equal(t, "hello", string(msg.Data))
		assert.False(t, msg.Binary)
	case <-ctx.Done():
		t.Fatal("no echo")
	}

	current, err := c.Session()
	require.NoError(t, err)
	assert.Equal(t, session.ID(), current.ID())

	require.NoError(t, c.Close(ctx))
	assert.Equal(t, reconnect.StateInactive, c.State().Kind)
	<-session.Done()

	assert.ErrorIs(t, c.Start(ctx), ErrClientClosed)
}

// TestClient_FatalStops 确认过的 403 使服务终止
func TestClient_FatalStops(t *testing.T) {
	srv := newChatServer(t, http.StatusForbidden)
	c := newTestClient(t,
		WithConfig(testConfig()),
		WithRoutes(types.RouteProxyF),
		WithFxOptions(srv.dialer()),
	)

	_, err := c.Connect(connectCtx(t))
	require.Error(t, err)
	assert.True(t, pkgif.IsFatal(err))
	assert.Equal(t, reconnect.StateInactive, c.State().Kind)
	assert.Error(t, c.Err())
}

// TestClient_ConnectOnce 单轮连接不启动重连服务
func TestClient_ConnectOnce(t *testing.T) {
	srv := newChatServer(t, http.StatusSwitchingProtocols)
	c := newTestClient(t,
		WithConfig(testConfig()),
		WithFxOptions(srv.dialer(types.RouteDirect)),
	)

	session, err := c.ConnectOnce(connectCtx(t))
	require.NoError(t, err)
	defer session.Close()

	assert.Equal(t, types.RouteProxyF, session.Info().RouteType)
	assert.Equal(t, reconnect.StateInactive, c.State().Kind)

	// 所有路由都失败时直接返回聚合错误
	failing := newTestClient(t,
		WithConfig(testConfig()),
		WithFxOptions(srv.dialer(types.RouteDirect, types.RouteProxyF)),
	)
	_, err = failing.ConnectOnce(connectCtx(t))
	require.Error(t, err)
	assert.False(t, pkgif.IsFatal(err))
	assert.Equal(t, reconnect.StateInactive, failing.State().Kind)
}

// TestClient_NetworkChangeReconnects 网络变化使活动会话重建
func TestClient_NetworkChangeReconnects(t *testing.T) {
	srv := newChatServer(t, http.StatusSwitchingProtocols)
	c := newTestClient(t,
		WithConfig(testConfig()),
		WithFxOptions(srv.dialer()),
	)

	first, err := c.Connect(connectCtx(t))
	require.NoError(t, err)
	assert.Equal(t, types.RouteDirect, first.Info().RouteType)

	c.NetworkChanged("")
	select {
	case <-first.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("old session not closed")
	}

	require.Eventually(t, func() bool {
		s, err := c.Session()
		return err == nil && s.ID() != first.ID()
	}, 5*time.Second, 10*time.Millisecond)
}

// ════════════════════════════════════════════════════════════════════════════
//                              诊断
// ════════════════════════════════════════════════════════════════════════════

// TestClient_TryAllRoutes 每条路由独立报告结果
func TestClient_TryAllRoutes(t *testing.T) {
	srv := newChatServer(t, http.StatusSwitchingProtocols)
	c := newTestClient(t,
		WithConfig(testConfig()),
		WithFxOptions(srv.dialer(types.RouteDirect)),
	)

	reports, err := c.TryAllRoutes(connectCtx(t))
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, types.RouteDirect, reports[0].Route)
	assert.False(t, reports[0].OK())
	assert.Equal(t, types.ErrorClassRetryable, reports[0].Class)

	assert.Equal(t, types.RouteProxyF, reports[1].Route)
	assert.True(t, reports[1].OK())
	assert.Equal(t, types.RouteProxyF, reports[1].Info.RouteType)
	assert.Equal(t, "front-f.test:443", reports[1].Host)

	require.NoError(t, c.Close(context.Background()))
	_, err = c.TryAllRoutes(context.Background())
	assert.ErrorIs(t, err, ErrClientClosed)
}

// TestClient_Metrics 尝试结果记录到给定注册表
func TestClient_Metrics(t *testing.T) {
	srv := newChatServer(t, http.StatusSwitchingProtocols)
	reg := prometheus.NewRegistry()
	c := newTestClient(t,
		WithConfig(testConfig()),
		WithRegistry(reg),
		WithFxOptions(srv.dialer(types.RouteDirect)),
	)

	_, err := c.Connect(connectCtx(t))
	require.NoError(t, err)
	require.NotNil(t, c.Metrics())

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["chatnet_connect_attempts_total"])
	assert.True(t, names["chatnet_service_state"])
}

// ════════════════════════════════════════════════════════════════════════════
//                              选项
// ════════════════════════════════════════════════════════════════════════════

func TestNew_Options(t *testing.T) {
	_, err := New(WithEnv("qa"))
	assert.ErrorIs(t, err, config.ErrUnknownEnv)

	_, err = New(WithConfig(nil))
	assert.ErrorIs(t, err, config.ErrNilConfig)

	_, err = New(WithConfig(testConfig()), WithRoutes(types.RouteTLSProxy))
	assert.ErrorIs(t, err, config.ErrNoRoutes)

	_, err = New(WithRoutes())
	assert.Error(t, err)

	c := newTestClient(t, WithEnv(config.EnvStaging), WithRoutes(types.RouteProxyG, types.RouteProxyF))
	cfg := c.Config()
	assert.Equal(t, config.EnvStaging, cfg.Env)
	routes := c.Endpoint().Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, types.RouteProxyF, routes[0].RouteType())
	assert.Equal(t, types.RouteProxyG, routes[1].RouteType())

	// 未启动的客户端可以直接关闭
	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
}

func TestVersionInfo(t *testing.T) {
	GitCommit = "0123456789abcdef"
	defer func() { GitCommit = "" }()
	assert.Equal(t, "chatnet "+Version+" (01234567)", VersionInfo())
}
