// Package reconnect 实现服务会话的建立与自动重连
//
// # 服务初始化
//
// ServiceInitializer 把一次“传输连接 + 会话启动”作为连接管理器的单次尝试：
// 路由选择、节流与超时都由管理器负责，会话启动失败时关闭已建立的字节流。
//
// # 状态机
//
//	         Start
//	Inactive ─────▶ Connecting ──成功──▶ Active
//	   ▲                │ ▲               │
//	   │ 致命错误/Cancel  │ │ 定时器/网络变化  │ 会话结束/网络变化
//	   │                ▼ │               ▼
//	   └──────────── Cooldown ◀──────── Connecting
//
// 任意状态下 Cancel 立即进入 Inactive，并中止进行中的尝试。
// Inactive 对同一个 Service 是终态。每一轮连接都从第一条路由重新开始。
//
// 冷却时长优先采用错误给出的 RetryAfter 提示，否则使用 Config.Cooldown。
//
// # 一次性服务
//
// NoReconnectService 只尝试一次，不做重连，用于冒烟测试与单元测试。
package reconnect
