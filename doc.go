// Package chatnet 为聊天服务建立并维持一条持久连接
//
// 连接层决定经哪条网络路径连接服务端，限制失败重试的频率，
// 并向上层提供与路径无关的会话。
//
// # 快速开始
//
//	import "github.com/dep2p/go-chatnet"
//
//	client, err := chatnet.New(
//	    chatnet.WithEnv("staging"),
//	    chatnet.WithAuth("username", "password"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close(context.Background())
//
//	session, err := client.Connect(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for msg := range session.Incoming() {
//	    ...
//	}
//
// # 组件层次
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│  Client                 chatnet.New() / Connect() / Close()     │
//	├─────────────────────────────────────────────────────────────────┤
//	│  reconnect.Service      Inactive → Connecting → Active/Cooldown │
//	├─────────────────────────────────────────────────────────────────┤
//	│  EndpointConnection     路由顺序回退 + WebSocket 升级            │
//	│  connmgr                单路由节流 / 多路由管理                  │
//	├─────────────────────────────────────────────────────────────────┤
//	│  transport              DNS → TCP → TLS(ALPN)                   │
//	│  dns                    缓存 → UDP → DoH → 系统 → 静态表         │
//	├─────────────────────────────────────────────────────────────────┤
//	│  eventbus / netmon      网络变化事件                             │
//	└─────────────────────────────────────────────────────────────────┘
//
// # 网络变化
//
// 网络接口变化由 netmon 自动检测；宿主平台也可以调用 Client.NetworkChanged
// 主动通知。网络变化会清空 DNS 缓存与路由冷却，并让重连服务立即重试。
//
// # 诊断
//
// Client.TryAllRoutes 在每条路由上并发地独立尝试一次，返回每条路由的结果，
// 供连通性测试使用。
package chatnet
