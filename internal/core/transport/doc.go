// Package transport 实现传输层连接器
//
// 连接器把一条路由（ConnectionParams）变成一条已完成 TLS 握手的字节流，
// 并报告实际使用的地址与 DNS 来源。
//
// # 连接器
//
//   - DirectConnector: DNS 解析 → TCP 拨号（逐个地址，IPv6 优先交替）→ TLS（SNI、信任锚、ALPN）
//   - PipeConnector:   内存管道，用于测试
//   - ConnectorFunc:   函数适配器
//
// # 错误分类
//
//	证书校验失败、配置无效       → Fatal
//	DNS、TCP、TLS 握手、取消     → Retryable
//
// # 并发安全
//
// 连接器无状态，可被任意数量的调用方并发使用。
//
// # Fx 模块集成
//
//	app := fx.New(
//	    eventbus.Module(),
//	    dns.Module(),
//	    transport.Module(),
//	    fx.Invoke(func(c pkgif.TransportConnector) { ... }),
//	)
//
// 公共接口：pkg/interfaces/transport.go
package transport
