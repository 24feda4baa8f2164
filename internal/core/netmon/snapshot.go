package netmon

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"sort"
	"strings"
)

// ============================================================================
//                              接口快照
// ============================================================================

// InterfaceSnapshot 一个网络接口在某一时刻的状态
type InterfaceSnapshot struct {
	Name  string
	Flags net.Flags
	Addrs []string
}

// SnapshotFunc 读取当前所有接口
type SnapshotFunc func() ([]InterfaceSnapshot, error)

// SystemInterfaces 读取系统网络接口，跳过 loopback
func SystemInterfaces() ([]InterfaceSnapshot, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	out := make([]InterfaceSnapshot, 0, len(ifaces))
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		snap := InterfaceSnapshot{Name: iface.Name, Flags: iface.Flags}
		if addrs, err := iface.Addrs(); err == nil {
			for _, addr := range addrs {
				snap.Addrs = append(snap.Addrs, addr.String())
			}
		}
		out = append(out, snap)
	}
	return out, nil
}

// fingerprint 基于接口名、状态与地址计算指纹
func fingerprint(snaps []InterfaceSnapshot) string {
	parts := make([]string, 0, len(snaps))
	for _, s := range snaps {
		addrs := append([]string(nil), s.Addrs...)
		sort.Strings(addrs)
		parts = append(parts, s.Name+":"+s.Flags.String()+":["+strings.Join(addrs, ",")+"]")
	}
	sort.Strings(parts)

	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h[:])
}

// changeReason 给出两次快照之间最主要的变化
func changeReason(old, cur []InterfaceSnapshot) string {
	before := make(map[string]InterfaceSnapshot, len(old))
	for _, s := range old {
		before[s.Name] = s
	}
	after := make(map[string]InterfaceSnapshot, len(cur))
	for _, s := range cur {
		after[s.Name] = s
	}

	for name, s := range after {
		prev, ok := before[name]
		if !ok || (prev.Flags&net.FlagUp == 0 && s.Flags&net.FlagUp != 0) {
			return "interface_up"
		}
		if prev.Flags&net.FlagUp != 0 && s.Flags&net.FlagUp == 0 {
			return "interface_down"
		}
	}
	for name := range before {
		if _, ok := after[name]; !ok {
			return "interface_down"
		}
	}
	for name, s := range after {
		if len(s.Addrs) > len(before[name].Addrs) {
			return "address_added"
		}
		if len(s.Addrs) < len(before[name].Addrs) {
			return "address_removed"
		}
	}
	return "network_changed"
}
