package chatnet

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-chatnet/config"
	"github.com/dep2p/go-chatnet/internal/core/connmgr"
	"github.com/dep2p/go-chatnet/internal/core/dns"
	"github.com/dep2p/go-chatnet/internal/core/eventbus"
	"github.com/dep2p/go-chatnet/internal/core/metrics"
	"github.com/dep2p/go-chatnet/internal/core/netmon"
	"github.com/dep2p/go-chatnet/internal/core/reconnect"
	"github.com/dep2p/go-chatnet/internal/core/transport"
	"github.com/dep2p/go-chatnet/internal/debug/introspect"
	"github.com/dep2p/go-chatnet/internal/protocol/chatws"
	"github.com/dep2p/go-chatnet/pkg/lib/log"
)

var logger = log.Logger("chatnet")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 事件层: EventBus → NetMon
//  2. 传输层: DNS → Transport
//  3. 服务层: ChatWS → Metrics → ConnMgr → Reconnect
//  4. 门面: EndpointConnection
//  5. 诊断: Introspect（启用时）
func buildFxApp(o *options, cfg *config.Config, c *Client) (*fx.App, error) {
	modules := []fx.Option{
		fx.Supply(cfg),

		eventbus.Module(),
		netmon.Module(),

		dns.Module(),
		transport.Module(),

		chatws.Module(),
		metrics.Module(),
		connmgr.Module(),
		reconnect.Module(),

		fx.Provide(NewEndpointConnection),

		introspect.Module(),
	}

	if o.registry != nil {
		modules = append(modules, fx.Supply(o.registry))
	}
	modules = append(modules, o.fxOptions...)

	modules = append(modules,
		fx.Populate(&c.service, &c.endpoint, &c.bus, &c.collector),
		fx.WithLogger(func() fxevent.Logger {
			if o.verboseFx {
				l, err := zap.NewDevelopment()
				if err == nil {
					return &fxevent.ZapLogger{Logger: l}
				}
			}
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	logger.Debug("Fx 应用已构建", "env", cfg.Env, "routes", len(cfg.Routes))
	return app, nil
}
