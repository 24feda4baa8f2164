package config

import (
	"fmt"
	"net/http"
	"os"
	"sort"

	"github.com/dep2p/go-chatnet/pkg/types"
)

// RouteConfig 一条路由的配置
//
// 装饰器按固定顺序生成：PathPrefix 在前，Headers 按名称排序在后。
type RouteConfig struct {
	// Type 路由类型（direct/proxyf/proxyg/tlsproxy）
	Type types.RouteType `json:"type" koanf:"type"`

	// SNI TLS 服务器名，空表示与 Host 相同
	SNI string `json:"sni" koanf:"sni"`

	// Host 实际连接的主机
	Host string `json:"host" koanf:"host"`

	// Port 端口
	// 默认值: 443
	Port uint16 `json:"port" koanf:"port"`

	// PathPrefix 升级请求的路径前缀
	PathPrefix string `json:"path_prefix,omitempty" koanf:"path_prefix"`

	// Headers 附加到升级请求的头
	Headers map[string]string `json:"headers,omitempty" koanf:"headers"`

	// ConfirmationHeader 服务端确认头，用于识别中间设备的拒绝
	ConfirmationHeader string `json:"confirmation_header,omitempty" koanf:"confirmation_header"`

	// RootCertsFile PEM 信任锚文件，空表示使用系统信任锚
	RootCertsFile string `json:"root_certs_file,omitempty" koanf:"root_certs_file"`
}

// Validate 验证路由配置
func (r RouteConfig) Validate() error {
	if r.Type == types.RouteTest {
		return invalid("type", r.Type)
	}
	if r.Host == "" {
		return invalid("host", r.Host)
	}
	if r.Port == 0 {
		return invalid("port", r.Port)
	}
	return nil
}

// Build 构建路由描述
func (r RouteConfig) Build() (*types.ConnectionParams, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var decorators types.DecoratorSeq
	if r.PathPrefix != "" {
		decorators = decorators.With(types.PathPrefix(r.PathPrefix))
	}
	names := make([]string, 0, len(r.Headers))
	for name := range r.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		decorators = decorators.With(types.Header(http.CanonicalHeaderKey(name), r.Headers[name]))
	}

	certs := types.NativeRoots()
	if r.RootCertsFile != "" {
		data, err := os.ReadFile(r.RootCertsFile)
		if err != nil {
			return nil, fmt.Errorf("read root certs: %w", err)
		}
		if certs, err = types.RootsFromPEM(data); err != nil {
			return nil, err
		}
	}

	p, err := types.NewConnectionParams(r.Type, r.SNI, r.Host, r.Port, decorators, certs)
	if err != nil {
		return nil, err
	}
	if r.ConfirmationHeader != "" {
		p = p.WithConfirmationHeader(r.ConfirmationHeader)
	}
	return p, nil
}

func (r RouteConfig) clone() RouteConfig {
	if r.Headers != nil {
		h := make(map[string]string, len(r.Headers))
		for k, v := range r.Headers {
			h[k] = v
		}
		r.Headers = h
	}
	return r
}
