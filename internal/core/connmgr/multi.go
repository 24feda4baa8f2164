package connmgr

import (
	"context"
	"sync"
	"time"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// ============================================================================
//                              MultiRouteManager
// ============================================================================

// MultiRouteManager 多路由连接管理器
//
// 路由按给定顺序严格串行尝试，不做并发竞速。
type MultiRouteManager struct {
	routes []*SingleRouteManager
}

var _ pkgif.ConnectionManager = (*MultiRouteManager)(nil)

// NewMultiRouteManager 创建多路由管理器
func NewMultiRouteManager(routes ...*SingleRouteManager) (*MultiRouteManager, error) {
	if len(routes) == 0 {
		return nil, ErrNoRoutes
	}
	return &MultiRouteManager{routes: append([]*SingleRouteManager(nil), routes...)}, nil
}

// NewMultiRouteManagerFromParams 为每条路由创建单路由管理器
func NewMultiRouteManagerFromParams(params []*types.ConnectionParams, cfg Config, opts ...Option) (*MultiRouteManager, error) {
	routes := make([]*SingleRouteManager, 0, len(params))
	for _, p := range params {
		r, err := NewSingleRouteManager(p, cfg, opts...)
		if err != nil {
			for _, created := range routes {
				_ = created.Close()
			}
			return nil, err
		}
		routes = append(routes, r)
	}
	return NewMultiRouteManager(routes...)
}

// Routes 返回各路由管理器
func (m *MultiRouteManager) Routes() []*SingleRouteManager {
	return append([]*SingleRouteManager(nil), m.routes...)
}

// Close 关闭所有路由管理器
func (m *MultiRouteManager) Close() error {
	for _, r := range m.routes {
		_ = r.Close()
	}
	return nil
}

// Connect 按序尝试各路由，返回第一个成功的结果
//
// 可重试失败继续下一条路由；致命错误立即返回；
// 全部失败时返回 *MultiRouteError。
func (m *MultiRouteManager) Connect(ctx context.Context, attempt pkgif.AttemptFunc) (any, error) {
	var failures []RouteFailure
	for _, r := range m.routes {
		v, err := r.Connect(ctx, attempt)
		if err == nil {
			if len(failures) > 0 {
				logger.Info("回退路由连接成功",
					"route", r.Params().RouteType(),
					"failed_routes", len(failures))
			}
			return v, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		f := RouteFailure{Params: r.Params(), Err: err, Class: pkgif.Classify(err)}
		failures = append(failures, f)
		logger.Debug("路由连接失败",
			"route", r.Params().RouteType(),
			"class", f.Class,
			"err", err)

		if f.Class == types.ErrorClassFatal {
			return nil, &MultiRouteError{Failures: failures}
		}
	}
	return nil, &MultiRouteError{Failures: failures}
}

// ============================================================================
//                              诊断模式
// ============================================================================

// RouteOutcome 诊断模式下一条路由的结果
type RouteOutcome struct {
	Params  *types.ConnectionParams
	Value   any
	Err     error
	Elapsed time.Duration
}

// OK 是否成功
func (o RouteOutcome) OK() bool {
	return o.Err == nil
}

// TryAllRoutes 并发地在每条路由上独立尝试一次
//
// 每条路由使用一个临时的单路由管理器，保留单次尝试超时，
// 但不检查也不修改生产管理器的冷却状态与观察者。
// 不短路，结果顺序与路由顺序一致。成功结果由调用方负责关闭。
func (m *MultiRouteManager) TryAllRoutes(ctx context.Context, attempt pkgif.AttemptFunc) []RouteOutcome {
	outcomes := make([]RouteOutcome, len(m.routes))

	var wg sync.WaitGroup
	for i, r := range m.routes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := r.clock.Now()
			outcome := RouteOutcome{Params: r.Params()}
			isolated, err := NewSingleRouteManager(r.params, r.cfg, WithClock(r.clock))
			if err != nil {
				outcome.Err = err
			} else {
				outcome.Value, outcome.Err = isolated.Connect(ctx, attempt)
			}
			outcome.Elapsed = r.clock.Since(start)
			outcomes[i] = outcome
		}()
	}
	wg.Wait()
	return outcomes
}
