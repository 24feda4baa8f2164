package introspect

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-chatnet/config"
	"github.com/dep2p/go-chatnet/internal/core/connmgr"
	"github.com/dep2p/go-chatnet/internal/core/reconnect"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// stubSession 固定信息的会话
type stubSession struct {
	info types.ConnectionInfo
}

func (s stubSession) Info() types.ConnectionInfo { return s.info }
func (s stubSession) Done() <-chan struct{}      { return nil }
func (s stubSession) Close() error               { return nil }

// stubService 固定状态的服务
type stubService struct {
	state reconnect.State
}

func (s stubService) Name() string           { return "chat" }
func (s stubService) State() reconnect.State { return s.state }

func testManager(t *testing.T) *connmgr.MultiRouteManager {
	t.Helper()
	var routes []*types.ConnectionParams
	for _, r := range []types.RouteType{types.RouteDirect, types.RouteProxyF} {
		p, err := types.NewConnectionParams(r, "chat.test", r.String()+".test", 443, nil, types.NativeRoots())
		require.NoError(t, err)
		routes = append(routes, p)
	}
	mgr, err := connmgr.NewMultiRouteManagerFromParams(routes, connmgr.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func getJSON(t *testing.T, h http.Handler, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestNew(t *testing.T) {
	server := New(Config{})
	assert.NotNil(t, server)
	assert.Equal(t, DefaultAddr, server.config.Addr)

	server = New(Config{Addr: "127.0.0.1:8080"})
	assert.Equal(t, "127.0.0.1:8080", server.config.Addr)
}

func TestServer_StartStop(t *testing.T) {
	server := New(Config{Addr: "127.0.0.1:0"}) // 使用随机端口

	ctx := context.Background()
	require.NoError(t, server.Start(ctx))
	assert.True(t, server.running)

	addr := server.Addr()
	assert.NotEmpty(t, addr)
	assert.NotEqual(t, "127.0.0.1:0", addr)

	// 重复启动应该无效
	require.NoError(t, server.Start(ctx))

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, server.Stop())
	assert.False(t, server.running)

	// 重复停止应该无效
	require.NoError(t, server.Stop())
}

func TestServer_Health(t *testing.T) {
	t.Run("no service", func(t *testing.T) {
		var health HealthResponse
		rec := getJSON(t, New(Config{}).Handler(), "/health", &health)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "degraded", health.Status)
	})

	t.Run("active", func(t *testing.T) {
		svc := stubService{state: reconnect.State{
			Kind:    reconnect.StateActive,
			Session: stubSession{},
		}}
		var health HealthResponse
		getJSON(t, New(Config{Service: svc}).Handler(), "/health", &health)
		assert.Equal(t, "ok", health.Status)
	})
}

func TestServer_ServiceEndpoint(t *testing.T) {
	h := New(Config{}).Handler()
	rec := getJSON(t, h, "/debug/introspect/service", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	info := types.ConnectionInfo{
		RouteType: types.RouteProxyF,
		DNSSource: types.DNSSourceStatic,
		Address:   types.IPHost(netip.MustParseAddr("192.0.2.1")),
	}
	svc := stubService{state: reconnect.State{Kind: reconnect.StateActive, Session: stubSession{info: info}}}

	var got ServiceInfo
	rec = getJSON(t, New(Config{Service: svc}).Handler(), "/debug/introspect/service", &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chat", got.Name)
	assert.Equal(t, "active", got.State)
	require.NotNil(t, got.Session)
	assert.Equal(t, types.RouteProxyF.String(), got.Session.Route)
	assert.Equal(t, types.DNSSourceStatic.String(), got.Session.DNSSource)
	assert.Equal(t, "192.0.2.1", got.Session.Address)
	assert.Equal(t, types.IPTypeV4.String(), got.Session.IPType)
}

func TestServer_ServiceEndpoint_Cooldown(t *testing.T) {
	until := time.Now().Add(time.Minute).Truncate(time.Second)
	svc := stubService{state: reconnect.State{
		Kind:  reconnect.StateCooldown,
		Until: until,
		Err:   io.ErrUnexpectedEOF,
	}}

	var got ServiceInfo
	getJSON(t, New(Config{Service: svc}).Handler(), "/debug/introspect/service", &got)
	assert.Equal(t, "cooldown", got.State)
	require.NotNil(t, got.CooldownUntil)
	assert.True(t, until.Equal(*got.CooldownUntil))
	assert.Equal(t, io.ErrUnexpectedEOF.Error(), got.Error)
	assert.Nil(t, got.Session)
}

func TestServer_RoutesEndpoint(t *testing.T) {
	var empty []RouteInfo
	rec := getJSON(t, New(Config{}).Handler(), "/debug/introspect/routes", &empty)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, empty)

	mgr := testManager(t)
	var routes []RouteInfo
	getJSON(t, New(Config{Routes: mgr}).Handler(), "/debug/introspect/routes", &routes)
	require.Len(t, routes, 2)
	assert.Equal(t, types.RouteDirect.String(), routes[0].Route)
	assert.Equal(t, "chat.test", routes[0].SNI)
	assert.Equal(t, types.RouteProxyF.String(), routes[1].Route)
	assert.Equal(t, 0, routes[1].ConsecutiveFailures)
	assert.Nil(t, routes[1].CooldownUntil)
}

func TestServer_IntrospectEndpoint(t *testing.T) {
	server := New(Config{
		Routes:  testManager(t),
		Service: stubService{state: reconnect.State{Kind: reconnect.StateConnecting}},
	})

	var resp IntrospectResponse
	rec := getJSON(t, server.Handler(), "/debug/introspect", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	assert.False(t, resp.Timestamp.IsZero())
	require.NotNil(t, resp.Service)
	assert.Equal(t, "connecting", resp.Service.State)
	assert.Len(t, resp.Routes, 2)
	require.NotNil(t, resp.Runtime)
	assert.NotEmpty(t, resp.Runtime.GoVersion)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/debug/introspect", strings.NewReader("{}"))
	New(Config{}).Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_PprofEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	New(Config{}).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "goroutine")
}

func TestCollectRuntimeInfo(t *testing.T) {
	info := collectRuntimeInfo()
	assert.NotEmpty(t, info.GoVersion)
	assert.Greater(t, info.NumGoroutine, 0)
	assert.Greater(t, info.NumCPU, 0)
	assert.Greater(t, info.MemSys, uint64(0))
}

func TestConfigFromUnified(t *testing.T) {
	assert.Nil(t, ConfigFromUnified(nil))

	cfg := config.NewConfig()
	assert.Nil(t, ConfigFromUnified(cfg), "disabled by default")

	cfg.Introspect.Enabled = true
	cfg.Introspect.Addr = "127.0.0.1:7070"
	got := ConfigFromUnified(cfg)
	require.NotNil(t, got)
	assert.Equal(t, "127.0.0.1:7070", got.Addr)

	out := NewFromParams(Params{UnifiedCfg: cfg})
	require.NotNil(t, out.Server)
	assert.Equal(t, "127.0.0.1:7070", out.Server.Addr())

	out = NewFromParams(Params{UnifiedCfg: config.NewConfig()})
	assert.Nil(t, out.Server)
}
