// Package metrics 提供连接层的 Prometheus 指标
//
// Collector 同时实现 AttemptObserver 与 ServiceStateObserver：
//
//	chatnet_connect_attempts_total{route,outcome}      每次路由尝试的结果
//	chatnet_connect_attempt_duration_seconds{route}    真正发起的尝试耗时
//	chatnet_route_throttled_total{route}               因冷却被跳过的尝试
//	chatnet_service_state{service,state}               当前状态为 1，其余为 0
//	chatnet_service_transitions_total{service,state}   进入各状态的次数
//
// Server 在 ListenAddr 上以 /metrics 暴露注册表。
//
// # 快速开始
//
//	reg := prometheus.NewRegistry()
//	c := metrics.NewCollector(reg)
//	mgr, _ := connmgr.NewMultiRouteManagerFromParams(routes, cfg, connmgr.WithObserver(c))
package metrics
