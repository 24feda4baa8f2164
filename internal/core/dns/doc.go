// Package dns 实现带缓存与静态回退的主机名解析
//
// 解析顺序：
//
//	缓存 → UDP 查询 → DNS-over-HTTPS → 系统解析器 → 静态表
//
// 第一个返回非空结果的在线策略写入缓存；静态表的结果标记为 Static，
// 不写入缓存。失败结果不缓存。
//
// 网络变化事件会同步清空整个缓存。同一主机的并发解析共享一次查询。
//
// 依赖关系：
//   - github.com/miekg/dns: UDP 与 DoH 报文
//   - github.com/hashicorp/golang-lru/v2/expirable: 带 TTL 的缓存
//   - golang.org/x/sync: singleflight、errgroup
//   - golang.org/x/net/idna: 主机名规范化
package dns
