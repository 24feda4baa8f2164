// Package interfaces 定义 chatnet 的公共接口
//
// 一个接口文件对应一个实现目录：
//   - errors.go    - ErrorClassifier, RetryHinter, Classify
//   - eventbus.go  - NetworkChangeBus（internal/core/eventbus）
//   - dns.go       - DNSResolver（internal/core/dns）
//   - transport.go - TransportConnector（internal/core/transport）
//   - connmgr.go   - ConnectionManager, AttemptObserver（internal/core/connmgr）
//   - service.go   - ServiceConnector, Session（internal/core/reconnect）
package interfaces
