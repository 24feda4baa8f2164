// Package chatws 实现基于 WebSocket 的聊天服务连接器
//
// Connector 在传输层已经建立好的 TLS 字节流上完成 WebSocket 升级：
//
//	GET <endpoint> HTTP/1.1        ← 路由装饰器只作用于这一个升级请求
//	Host: <route host>
//	Authorization: Basic ...       ← 提供凭据时
//	Upgrade: websocket
//
// 握手失败按响应分类：
//   - 路由配置了确认头而响应缺少该头：请求被中间设备拦截，可重试
//   - 429 / 5xx：可重试，429 的 Retry-After 作为冷却提示
//   - 其他 4xx：致命
//   - 无响应（I/O 错误）：可重试
//
// 升级成功后得到 ChatSession：读循环把收到的帧投递到 Incoming()，
// 按 KeepAliveInterval 发送 ping，MaxIdleTime 内没有任何入站数据则结束会话。
//
// 依赖关系：
//   - github.com/gorilla/websocket: WebSocket 客户端
//   - github.com/google/uuid: 会话 ID
//   - github.com/benbjohnson/clock: 保活定时
package chatws
