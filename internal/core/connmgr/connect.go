package connmgr

import (
	"context"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// Connect 带类型的 ConnectionManager.Connect
func Connect[T any](ctx context.Context, mgr pkgif.ConnectionManager, fn func(ctx context.Context, params *types.ConnectionParams) (T, error)) (T, error) {
	v, err := mgr.Connect(ctx, func(ctx context.Context, params *types.ConnectionParams) (any, error) {
		return fn(ctx, params)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// ConnectTransport 通过管理器建立传输连接
func ConnectTransport(ctx context.Context, mgr pkgif.ConnectionManager, connector pkgif.TransportConnector, alpn types.Alpn) (pkgif.StreamAndInfo, error) {
	return Connect(ctx, mgr, func(ctx context.Context, params *types.ConnectionParams) (pkgif.StreamAndInfo, error) {
		return connector.Connect(ctx, params, alpn)
	})
}
