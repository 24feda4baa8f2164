package types

import (
	"net/http"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteType(t *testing.T) {
	tests := []struct {
		r    RouteType
		want string
	}{
		{RouteDirect, "direct"},
		{RouteProxyF, "proxyf"},
		{RouteProxyG, "proxyg"},
		{RouteTLSProxy, "tlsproxy"},
		{RouteTest, "test"},
		{RouteType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.String())
		})
	}
}

func TestRouteType_UnmarshalText(t *testing.T) {
	var r RouteType
	require.NoError(t, r.UnmarshalText([]byte("proxyg")))
	assert.Equal(t, RouteProxyG, r)

	assert.ErrorIs(t, r.UnmarshalText([]byte("carrier-pigeon")), ErrUnknownRouteType)
}

// TestAlpn_WireBytes ALPN 线上编码为长度前缀
func TestAlpn_WireBytes(t *testing.T) {
	assert.Equal(t, []byte("\x08http/1.1"), AlpnHTTP11.WireBytes())
	assert.Equal(t, []byte("\x02h2"), AlpnHTTP2.WireBytes())
	assert.Equal(t, "h2", AlpnHTTP2.String())
}

func TestConnectionInfo_Description(t *testing.T) {
	info := ConnectionInfo{
		RouteType: RouteTest,
		DNSSource: DNSSourceSystemLookup,
		Address:   DomainHost("chat.example.org"),
	}
	assert.Equal(t, "route=test;dns_source=systemlookup;ip_type=Unknown", info.Description())

	info.Address = IPHost(netip.MustParseAddr("192.0.2.1"))
	assert.Equal(t, IPTypeV4, info.IPType())

	info.Address = ParseHost("2001:db8::1")
	assert.Equal(t, IPTypeV6, info.IPType())
}

// TestParseHost_MappedV4 IPv4 映射地址按 IPv4 处理
func TestParseHost_MappedV4(t *testing.T) {
	h := ParseHost("::ffff:192.0.2.1")
	assert.Equal(t, IPTypeV4, h.IPType())
	assert.Equal(t, "192.0.2.1", h.String())
}

// ============================================================================
//                              装饰器
// ============================================================================

func TestPathPrefix(t *testing.T) {
	tests := []struct {
		url      string
		wantPath string
		wantRaw  string
	}{
		{"https://chat.example.org/", "/chat/", ""},
		{"https://chat.example.org/v1", "/chat/v1", ""},
		{"https://chat.example.org/v1?a=b", "/chat/v1", "a=b"},
		{"https://chat.example.org/v1/endpoint", "/chat/v1/endpoint", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, tt.url, nil)
			require.NoError(t, err)

			PathPrefix("/chat").Decorate(req)

			assert.Equal(t, tt.wantPath, req.URL.Path)
			assert.Equal(t, tt.wantRaw, req.URL.RawQuery)
		})
	}
}

func TestHeaderDecorator_BasicAuth(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://chat.example.org/", nil)
	require.NoError(t, err)

	Header("Authorization", BasicAuthorization("usrnm", "psswd")).Decorate(req)

	assert.Equal(t, "Basic dXNybm06cHNzd2Q=", req.Header.Get("Authorization"))
}

// TestDecoratorSeq_Order 装饰器按从左到右的顺序应用
func TestDecoratorSeq_Order(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://chat.example.org/v1", nil)
	require.NoError(t, err)

	seq := DecoratorSeq{
		PathPrefix("/inner"),
		PathPrefix("/outer"),
		HeaderMap(http.Header{"X-A": {"1", "2"}}),
		Generic(func(r *http.Request) { r.Header.Set("X-A", "last") }),
	}
	seq.Decorate(req)

	assert.Equal(t, "/outer/inner/v1", req.URL.Path)
	assert.Equal(t, []string{"last"}, req.Header.Values("X-A"))
}

// ============================================================================
//                              路由描述
// ============================================================================

func TestNewConnectionParams_Validation(t *testing.T) {
	_, err := NewConnectionParams(RouteDirect, "sni", "host", 0, nil, NativeRoots())
	assert.ErrorIs(t, err, ErrZeroPort)

	_, err = NewConnectionParams(RouteDirect, "sni", "", 443, nil, NativeRoots())
	assert.ErrorIs(t, err, ErrEmptyHost)

	p, err := NewConnectionParams(RouteDirect, "", "chat.example.org", 443, nil, NativeRoots())
	require.NoError(t, err)
	assert.Equal(t, "chat.example.org", p.SNI())
	assert.Equal(t, "chat.example.org:443", p.HostPort())
}

// TestConnectionParams_WithDecorator 修改返回副本，原值不变
func TestConnectionParams_WithDecorator(t *testing.T) {
	base, err := NewConnectionParams(RouteProxyF, "chat.example.org", "front.example.net", 443,
		DecoratorSeq{PathPrefix("/service")}, NativeRoots())
	require.NoError(t, err)

	a := base.WithDecorator(Header("X-A", "a"))
	b := base.WithDecorator(Header("X-B", "b")).WithConfirmationHeader("x-confirm")

	assert.Len(t, base.Decorators(), 1)
	assert.Len(t, a.Decorators(), 2)
	assert.Len(t, b.Decorators(), 2)
	assert.Equal(t, DecoratorHeader, a.Decorators()[1].Kind())
	assert.Empty(t, base.ConfirmationHeader())
	assert.Equal(t, "x-confirm", b.ConfirmationHeader())

	req, err := http.NewRequest(http.MethodGet, "https://front.example.net/", nil)
	require.NoError(t, err)
	a.Decorators().Decorate(req)
	assert.Equal(t, "a", req.Header.Get("X-A"))
	assert.Empty(t, req.Header.Get("X-B"))
}

func TestRootCertificates(t *testing.T) {
	assert.True(t, NativeRoots().IsNative())

	_, err := RootsFromPEM([]byte("not pem"))
	assert.ErrorIs(t, err, ErrNoCertificates)

	_, err = RootsFromDER([]byte{0x01, 0x02}).CertPool()
	assert.Error(t, err)
}
