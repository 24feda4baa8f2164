package eventbus

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// ============================================================================
// 回调订阅
// ============================================================================

// TestBus_OnChange 每个回调在 Emit 返回前被调用
func TestBus_OnChange(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var a, b atomic.Int32
	subA := bus.OnChange(func(types.NetworkChangeEvent) { a.Add(1) })
	bus.OnChange(func(types.NetworkChangeEvent) { b.Add(1) })

	bus.Emit(types.NetworkChangeEvent{Reason: "test"})
	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(1), b.Load())

	require.NoError(t, subA.Close())
	require.NoError(t, subA.Close())
	bus.Emit(types.NetworkChangeEvent{Reason: "test"})
	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(2), b.Load())
	assert.Equal(t, uint64(2), bus.Emitted())
}

// TestBus_EmitFillsTimestamp 未设置时间时由总线补齐
func TestBus_EmitFillsTimestamp(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var got types.NetworkChangeEvent
	bus.OnChange(func(evt types.NetworkChangeEvent) { got = evt })
	bus.Emit(types.NetworkChangeEvent{Reason: "manual"})

	assert.Equal(t, "manual", got.Reason)
	assert.False(t, got.Timestamp.IsZero())
}

// TestBus_CallbackMayUseBus 回调中可以再次调用总线
func TestBus_CallbackMayUseBus(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var inner pkgif.Subscription
	bus.OnChange(func(types.NetworkChangeEvent) {
		inner = bus.OnChange(func(types.NetworkChangeEvent) {})
	})

	done := make(chan struct{})
	go func() {
		bus.Emit(types.NetworkChangeEvent{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit deadlocked")
	}
	assert.NotNil(t, inner)
}

// ============================================================================
// 通道订阅
// ============================================================================

// TestBus_Subscribe_Coalesce 慢消费者只会看到一个待读事件
func TestBus_Subscribe_Coalesce(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub, err := bus.Subscribe()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		bus.Emit(types.NetworkChangeEvent{Reason: "burst"})
	}

	select {
	case evt := <-sub.Out():
		assert.Equal(t, "burst", evt.Reason)
	default:
		t.Fatal("expected a pending event")
	}
	select {
	case <-sub.Out():
		t.Fatal("events should have been coalesced")
	default:
	}
}

func TestBus_Subscribe_BufSize(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub, err := bus.Subscribe(pkgif.BufSize(3))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		bus.Emit(types.NetworkChangeEvent{})
	}
	assert.Len(t, sub.Out(), 3)

	_, err = bus.Subscribe(pkgif.BufSize(0))
	assert.ErrorIs(t, err, ErrInvalidBuffer)
}

// TestSubscription_Close 关闭后通道关闭且不再接收事件
func TestSubscription_Close(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub, err := bus.Subscribe()
	require.NoError(t, err)
	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	_, ok := <-sub.Out()
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		bus.Emit(types.NetworkChangeEvent{})
	})
}

func TestBus_Close(t *testing.T) {
	bus := NewBus()

	sub, err := bus.Subscribe()
	require.NoError(t, err)

	var called atomic.Bool
	bus.OnChange(func(types.NetworkChangeEvent) { called.Store(true) })

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	_, ok := <-sub.Out()
	assert.False(t, ok)
	assert.NoError(t, sub.Close())

	bus.Emit(types.NetworkChangeEvent{})
	assert.False(t, called.Load())

	_, err = bus.Subscribe()
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, bus.OnChange(func(types.NetworkChangeEvent) {}).Close())
}

// ============================================================================
// 并发
// ============================================================================

// TestBus_Concurrent 并发订阅、取消与广播
func TestBus_Concurrent(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				bus.Emit(types.NetworkChangeEvent{Reason: "concurrent"})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sub, err := bus.Subscribe()
				if err != nil {
					return
				}
				cb := bus.OnChange(func(types.NetworkChangeEvent) {})
				_ = sub.Close()
				_ = cb.Close()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(20*50), bus.Emitted())
}
