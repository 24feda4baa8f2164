package netmon

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-chatnet/config"
	"github.com/dep2p/go-chatnet/internal/core/eventbus"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// fakeInterfaces 可变的接口列表
type fakeInterfaces struct {
	mu    sync.Mutex
	snaps []InterfaceSnapshot
	err   error
}

func (f *fakeInterfaces) set(snaps ...InterfaceSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snaps = snaps
}

func (f *fakeInterfaces) read() ([]InterfaceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]InterfaceSnapshot(nil), f.snaps...), f.err
}

func wifi(addrs ...string) InterfaceSnapshot {
	return InterfaceSnapshot{Name: "wlan0", Flags: net.FlagUp, Addrs: addrs}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.ErrorIs(t, Config{Enabled: true}.Validate(), ErrInvalidConfig)
	assert.NoError(t, Config{}.Validate())
}

// TestFingerprint_OrderIndependent 指纹与接口、地址顺序无关
func TestFingerprint_OrderIndependent(t *testing.T) {
	a := []InterfaceSnapshot{wifi("10.0.0.2/24", "fe80::1/64"), {Name: "eth0", Flags: net.FlagUp}}
	b := []InterfaceSnapshot{{Name: "eth0", Flags: net.FlagUp}, wifi("fe80::1/64", "10.0.0.2/24")}
	assert.Equal(t, fingerprint(a), fingerprint(b))
	assert.NotEqual(t, fingerprint(a), fingerprint(a[:1]))
}

func TestChangeReason(t *testing.T) {
	assert.Equal(t, "interface_up", changeReason(nil, []InterfaceSnapshot{wifi()}))
	assert.Equal(t, "interface_down", changeReason([]InterfaceSnapshot{wifi()}, nil))
	assert.Equal(t, "interface_down", changeReason(
		[]InterfaceSnapshot{wifi()},
		[]InterfaceSnapshot{{Name: "wlan0"}}))
	assert.Equal(t, "address_added", changeReason(
		[]InterfaceSnapshot{wifi()},
		[]InterfaceSnapshot{wifi("10.0.0.2/24")}))
	assert.Equal(t, "address_removed", changeReason(
		[]InterfaceSnapshot{wifi("10.0.0.2/24")},
		[]InterfaceSnapshot{wifi()}))
	assert.Equal(t, "network_changed", changeReason(
		[]InterfaceSnapshot{wifi("10.0.0.2/24")},
		[]InterfaceSnapshot{wifi("10.0.0.3/24")}))
}

// TestWatcher_Check 指纹变化时广播事件
func TestWatcher_Check(t *testing.T) {
	bus := eventbus.NewBus()
	defer bus.Close()

	var events []types.NetworkChangeEvent
	bus.OnChange(func(evt types.NetworkChangeEvent) { events = append(events, evt) })

	ifaces := &fakeInterfaces{}
	ifaces.set(wifi("10.0.0.2/24"))
	w, err := NewWatcher(DefaultConfig(), bus, WithSnapshotFunc(ifaces.read), WithClock(clock.NewMock()))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.False(t, w.Check())
	assert.Empty(t, events)

	ifaces.set(wifi("10.0.0.2/24", "10.0.0.3/24"))
	assert.True(t, w.Check())
	require.Len(t, events, 1)
	assert.Equal(t, "address_added", events[0].Reason)

	// 读取失败不视为变化
	ifaces.mu.Lock()
	ifaces.err = errors.New("boom")
	ifaces.mu.Unlock()
	assert.False(t, w.Check())
}

// TestWatcher_Poll 时钟推进一个周期后自动检查
func TestWatcher_Poll(t *testing.T) {
	bus := eventbus.NewBus()
	defer bus.Close()

	changed := make(chan types.NetworkChangeEvent, 1)
	bus.OnChange(func(evt types.NetworkChangeEvent) { changed <- evt })

	mock := clock.NewMock()
	ifaces := &fakeInterfaces{}
	ifaces.set(wifi())

	cfg := Config{Enabled: true, PollInterval: time.Second}
	w, err := NewWatcher(cfg, bus, WithSnapshotFunc(ifaces.read), WithClock(mock))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	ifaces.set(wifi(), InterfaceSnapshot{Name: "eth0", Flags: net.FlagUp})
	mock.Add(time.Second)

	select {
	case evt := <-changed:
		assert.Equal(t, "interface_up", evt.Reason)
	case <-time.After(2 * time.Second):
		t.Fatal("no network change emitted")
	}
}

func TestWatcher_Disabled(t *testing.T) {
	bus := eventbus.NewBus()
	defer bus.Close()

	w, err := NewWatcher(Config{}, bus)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	assert.False(t, w.running.Load())
	require.NoError(t, w.Stop())
}

func TestModule_Lifecycle(t *testing.T) {
	cfg := config.NewConfig()
	cfg.NetMon.Enabled = false

	var w *Watcher
	app := fxtest.New(t,
		eventbus.Module(),
		Module(),
		fx.Supply(cfg),
		fx.Populate(&w),
	)
	app.RequireStart()
	require.NotNil(t, w)
	app.RequireStop()
}

func TestConfigFromUnified(t *testing.T) {
	assert.Equal(t, DefaultConfig(), ConfigFromUnified(nil))

	cfg := config.NewConfig()
	cfg.NetMon.PollInterval = config.Duration(time.Minute)
	assert.Equal(t, Config{Enabled: true, PollInterval: time.Minute}, ConfigFromUnified(cfg))
}
