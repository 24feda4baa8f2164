// Package types 定义 chatnet 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 chatnet 内部包。
// 所有类型都是值类型或不可变类型，可在多个 goroutine 间共享。
//
// # 文件组织
//
//   - enums.go      - RouteType, DNSSource, IPType, ErrorClass, Alpn
//   - route.go      - ConnectionParams（路由描述）
//   - decorator.go  - HTTPRequestDecorator, DecoratorSeq
//   - connection.go - Host, ConnectionInfo
//   - certs.go      - RootCertificates
//   - events.go     - NetworkChangeEvent, Auth
//   - errors.go     - 公共错误定义
package types
