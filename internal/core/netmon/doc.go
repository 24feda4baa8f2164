// Package netmon 监听系统网络接口变化
//
// 基于轮询的跨平台实现：定期读取 net.Interfaces()，计算网络指纹，
// 指纹变化时向网络变化事件总线广播 NetworkChangeEvent。
//
// 平台层若有更准确的事件源（如移动端的网络回调），
// 可以直接调用总线的 Emit，无需启用本模块。
package netmon
