package config

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-chatnet/pkg/types"
)

// TestNewConfig 默认配置有效
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, EnvProduction, cfg.Env)

	t.Log("✅ NewConfig 测试通过")
}

// TestPresets 预设的路由顺序与静态表
func TestPresets(t *testing.T) {
	for _, name := range []string{EnvStaging, EnvProduction, "prod"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := ForEnv(name)
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())

			kinds := make([]types.RouteType, 0, len(cfg.Routes))
			for _, r := range cfg.Routes {
				kinds = append(kinds, r.Type)
			}
			assert.Equal(t, []types.RouteType{types.RouteDirect, types.RouteProxyF, types.RouteProxyG}, kinds)

			static, err := cfg.DNS.StaticAddrs()
			require.NoError(t, err)
			assert.NotEmpty(t, static[cfg.Routes[0].Host])
		})
	}

	_, err := ForEnv("qa")
	assert.ErrorIs(t, err, ErrUnknownEnv)
}

// TestConfig_Validate 各子配置的校验
func TestConfig_Validate(t *testing.T) {
	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), ErrNilConfig)

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"no routes", func(c *Config) { c.Routes = nil }, ErrNoRoutes},
		{"zero port", func(c *Config) { c.Routes[1].Port = 0 }, ErrInvalidValue},
		{"empty host", func(c *Config) { c.Routes[0].Host = "" }, ErrInvalidValue},
		{"test route", func(c *Config) { c.Routes[0].Type = types.RouteTest }, ErrInvalidValue},
		{"attempt timeout", func(c *Config) { c.Connect.AttemptTimeout = 0 }, ErrInvalidValue},
		{"threshold", func(c *Config) { c.Connect.FailureThreshold = 0 }, ErrInvalidValue},
		{"max below base", func(c *Config) { c.Connect.MaxCooldown = c.Connect.BaseCooldown - 1 }, ErrInvalidValue},
		{"dns static ip", func(c *Config) { c.DNS.Static["x.test"] = []string{"not-an-ip"} }, ErrInvalidValue},
		{"dns cache size", func(c *Config) { c.DNS.CacheSize = 0 }, ErrInvalidValue},
		{"negative dial", func(c *Config) { c.Transport.DialTimeout = -1 }, ErrInvalidValue},
		{"cooldown", func(c *Config) { c.Reconnect.Cooldown = 0 }, ErrInvalidValue},
		{"endpoint", func(c *Config) { c.Chat.Endpoint = "v1" }, ErrInvalidValue},
		{"idle below keepalive", func(c *Config) { c.Chat.MaxIdleTime = c.Chat.KeepAliveInterval }, ErrInvalidValue},
		{"poll interval", func(c *Config) { c.NetMon.PollInterval = 0 }, ErrInvalidValue},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, ErrInvalidValue},
		{"metrics addr", func(c *Config) { c.Metrics = MetricsConfig{Enabled: true} }, ErrInvalidValue},
		{"introspect addr", func(c *Config) { c.Introspect = IntrospectConfig{Enabled: true} }, ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Production()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}

	t.Run("netmon disabled ignores interval", func(t *testing.T) {
		cfg := Production()
		cfg.NetMon = NetMonConfig{Enabled: false}
		assert.NoError(t, cfg.Validate())
	})
}

// TestRouteConfig_Build 装饰器顺序与确认头
func TestRouteConfig_Build(t *testing.T) {
	r := RouteConfig{
		Type:               types.RouteProxyF,
		Host:               "front.test",
		Port:               8443,
		PathPrefix:         "/service",
		Headers:            map[string]string{"x-b": "2", "x-a": "1"},
		ConfirmationHeader: "X-Chat-Timestamp",
	}
	p, err := r.Build()
	require.NoError(t, err)

	assert.Equal(t, types.RouteProxyF, p.RouteType())
	assert.Equal(t, "front.test", p.SNI())
	assert.Equal(t, "front.test:8443", p.HostPort())
	assert.Equal(t, "X-Chat-Timestamp", p.ConfirmationHeader())
	assert.True(t, p.Certs().IsNative())

	req, err := http.NewRequest(http.MethodGet, "https://front.test/v1/websocket/", nil)
	require.NoError(t, err)
	req = p.Decorators().Decorate(req)
	assert.Equal(t, "/service/v1/websocket/", req.URL.Path)
	assert.Equal(t, "1", req.Header.Get("X-A"))
	assert.Equal(t, "2", req.Header.Get("X-B"))

	t.Run("missing root certs file", func(t *testing.T) {
		r := r
		r.RootCertsFile = filepath.Join(t.TempDir(), "missing.pem")
		_, err := r.Build()
		assert.Error(t, err)
	})
}

// TestConfig_KeepRoutes 过滤保持顺序且不影响克隆前的配置
func TestConfig_KeepRoutes(t *testing.T) {
	cfg := Production()
	clone := cfg.Clone()

	clone.KeepRoutes(types.RouteProxyG, types.RouteDirect)
	require.Len(t, clone.Routes, 2)
	assert.Equal(t, types.RouteDirect, clone.Routes[0].Type)
	assert.Equal(t, types.RouteProxyG, clone.Routes[1].Type)
	assert.Len(t, cfg.Routes, 3)

	clone.DNS.Static["other.test"] = []string{"192.0.2.99"}
	assert.NotContains(t, cfg.DNS.Static, "other.test")

	params, err := cfg.ConnectionParams()
	require.NoError(t, err)
	assert.Len(t, params, 3)

	clone.KeepRoutes(types.RouteTLSProxy)
	_, err = clone.ConnectionParams()
	assert.ErrorIs(t, err, ErrNoRoutes)
}

// TestFromJSON 文件中的值覆盖预设，路由整体替换
func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"env": "staging",
		"routes": [
			{"type": "proxyg", "host": "front-g.test", "port": 443, "path_prefix": "/svc"}
		],
		"connect": {"attempt_timeout": "3s", "failure_threshold": 4},
		"chat": {"username": "alice", "password": "secret"},
		"log": {"level": "core/dns=debug,warn"}
	}`)

	cfg, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, EnvStaging, cfg.Env)
	require.Len(t, cfg.Routes, 1)
	assert.Equal(t, types.RouteProxyG, cfg.Routes[0].Type)
	assert.Equal(t, "/svc", cfg.Routes[0].PathPrefix)
	assert.Equal(t, 3*time.Second, cfg.Connect.AttemptTimeout.Duration())
	assert.Equal(t, 4, cfg.Connect.FailureThreshold)
	assert.Equal(t, DefaultConnectConfig().MaxCooldown, cfg.Connect.MaxCooldown)
	assert.Equal(t, types.Auth{Username: "alice", Password: "secret"}, cfg.Chat.Auth())
	assert.Equal(t, "core/dns=debug,warn", cfg.Log.Level)

	_, err = FromJSON([]byte(`{"env": "qa"}`))
	assert.ErrorIs(t, err, ErrUnknownEnv)

	_, err = FromJSON([]byte(`{"routes": []}`))
	assert.ErrorIs(t, err, ErrNoRoutes)
}

// TestLoad 环境变量优先于文件
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chatnet.json")
	raw, err := json.Marshal(map[string]any{
		"reconnect": map[string]any{"cooldown": "7s"},
		"dns":       map[string]any{"static": map[string][]string{"chat.example.net": {"198.51.100.7"}}},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	t.Setenv("CHATNET_RECONNECT_CONNECT__TIMEOUT", "9s")
	t.Setenv("CHATNET_METRICS_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, 7*time.Second, cfg.Reconnect.Cooldown.Duration())
	assert.Equal(t, 9*time.Second, cfg.Reconnect.ConnectTimeout.Duration())
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, map[string][]string{"chat.example.net": {"198.51.100.7"}}, cfg.DNS.Static)
	assert.Len(t, cfg.Routes, 3)
}

// TestLoad_TOML 按扩展名选择解析器
func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatnet.toml")
	doc := `
env = "staging"

[[routes]]
type = "direct"
host = "chat.test"
port = 8443

[transport]
dial_timeout = "2s"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Routes, 1)
	assert.Equal(t, uint16(8443), cfg.Routes[0].Port)
	assert.Equal(t, 2*time.Second, cfg.Transport.DialTimeout.Duration())
}

// TestDuration 字符串与纳秒数两种 JSON 形式
func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, d.Duration())

	require.NoError(t, json.Unmarshal([]byte(`1500000000`), &d))
	assert.Equal(t, 1500*time.Millisecond, d.Duration())

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))

	out, err := json.Marshal(Duration(2 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(out))
}
