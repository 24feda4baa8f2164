// Package connmgr 实现路由级的连接管理
//
// # 单路由节流管理器
//
// SingleRouteManager 包装一条路由：
//   - 串行化同一路由上的并发尝试
//   - 每次尝试受 AttemptTimeout 约束
//   - 连续可重试失败达到阈值后进入冷却，冷却期间立即返回 ThrottledError
//   - 冷却时长按失败次数指数增长，有上限
//   - 成功清零；致命错误与调用方取消不改变状态
//   - 网络变化事件清除冷却
//
// # 多路由管理器
//
// MultiRouteManager 按配置顺序逐条尝试路由：
//
//	Direct ──失败(可重试)──▶ ProxyF ──失败(可重试)──▶ ProxyG
//	   │                        │
//	 成功即返回               致命错误立即返回
//
// 诊断模式 TryAllRoutes 并发尝试所有路由并逐条报告结果。
// 诊断尝试使用独立的临时管理器，不受也不影响生产路由的冷却状态。
//
// 依赖关系：
//   - github.com/benbjohnson/clock: 冷却与超时计时
package connmgr
