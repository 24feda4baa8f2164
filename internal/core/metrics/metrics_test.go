package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/types"
)

func TestCollector_ObserveAttempt(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveAttempt(types.RouteDirect, pkgif.OutcomeRetryable, 120*time.Millisecond)
	c.ObserveAttempt(types.RouteDirect, pkgif.OutcomeThrottled, 0)
	c.ObserveAttempt(types.RouteProxyF, pkgif.OutcomeSuccess, 300*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.attempts.WithLabelValues("direct", "retryable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.attempts.WithLabelValues("direct", "throttled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.attempts.WithLabelValues("proxyf", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.throttled.WithLabelValues("direct")))

	// 被节流的尝试不计入耗时
	assert.Equal(t, 2, testutil.CollectAndCount(c.attemptDuration))
}

func TestCollector_ObserveServiceState(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.ObserveServiceState("chat", "connecting")
	c.ObserveServiceState("chat", "active")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.serviceState.WithLabelValues("chat", "active")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.serviceState.WithLabelValues("chat", "connecting")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.serviceState.WithLabelValues("chat", "cooldown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues("chat", "connecting")))
}

// TestNewCollector_Reuse 同一注册表上重复创建时复用已注册的指标
func TestNewCollector_Reuse(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewCollector(reg)
	b := NewCollector(reg)

	a.ObserveAttempt(types.RouteProxyG, pkgif.OutcomeFatal, time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(b.attempts.WithLabelValues("proxyg", "fatal")))
}

func TestServer_Exposes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ObserveAttempt(types.RouteDirect, pkgif.OutcomeSuccess, time.Millisecond)

	srv := NewServer(Config{Enabled: true, ListenAddr: "127.0.0.1:0"}, reg)
	require.NoError(t, srv.Start())
	defer srv.Stop(context.Background())

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `chatnet_connect_attempts_total{outcome="success",route="direct"} 1`))
}

func TestModule_Load(t *testing.T) {
	var (
		attempts pkgif.AttemptObserver
		states   pkgif.ServiceStateObserver
		srv      *Server
	)
	app := fxtest.New(t,
		Module(),
		fx.Populate(&attempts, &states, &srv),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.NotNil(t, attempts)
	assert.Same(t, attempts, states)
	assert.Nil(t, srv)
}
