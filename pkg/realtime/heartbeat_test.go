// pkg/realtime/heartbeat_test.go
package realtime

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hbRecorder 记录心跳发送的帧
type hbRecorder struct {
	mu     sync.Mutex
	frames []string
	fail   bool
}

func (r *hbRecorder) send(data []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return false
	}
	r.frames = append(r.frames, string(data))
	return true
}

func (r *hbRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func hbConfig() HeartbeatConfig {
	return HeartbeatConfig{
		Enabled:     true,
		Interval:    30 * time.Second,
		PingPayload: defaultHeartbeatPayload,
	}
}

func TestHeartbeatSendsPing(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rec := &hbRecorder{}
	h := NewHeartbeat(hbConfig(), fc, rec.send, nil)

	h.Start()
	defer h.Stop()

	fc.BlockUntil(1)
	fc.Advance(30 * time.Second)

	require.Eventually(t, func() bool {
		return rec.count() == 1
	}, time.Second, time.Millisecond)

	rec.mu.Lock()
	frame := rec.frames[0]
	rec.mu.Unlock()
	assert.JSONEq(t, `{"type":"ping"}`, frame)
}

func TestHeartbeatLatency(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rec := &hbRecorder{}
	h := NewHeartbeat(hbConfig(), fc, rec.send, nil)

	h.Start()
	defer h.Stop()

	fc.BlockUntil(1)
	fc.Advance(30 * time.Second)
	require.Eventually(t, func() bool {
		return rec.count() == 1
	}, time.Second, time.Millisecond)

	// 延迟 = pong 到达时刻 - ping 发送时刻
	fc.Advance(5 * time.Millisecond)
	d, ok := h.HandlePong()
	require.True(t, ok)
	assert.Equal(t, 5*time.Millisecond, d)
	assert.Equal(t, 5*time.Millisecond, h.Latency())
}

func TestHeartbeatPongWithoutPing(t *testing.T) {
	fc := clockwork.NewFakeClock()
	h := NewHeartbeat(hbConfig(), fc, (&hbRecorder{}).send, nil)

	_, ok := h.HandlePong()
	assert.False(t, ok)
}

func TestHeartbeatMissedPong(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rec := &hbRecorder{}
	h := NewHeartbeat(hbConfig(), fc, rec.send, nil)

	var missedHook atomic.Int64
	h.onMissed = func() { missedHook.Add(1) }

	h.Start()
	defer h.Stop()

	fc.BlockUntil(1)
	fc.Advance(30 * time.Second)
	require.Eventually(t, func() bool {
		return rec.count() == 1
	}, time.Second, time.Millisecond)

	// 上一个 ping 未得到应答，下一个周期计为丢失
	fc.Advance(30 * time.Second)
	require.Eventually(t, func() bool {
		return h.Missed() == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, int64(1), missedHook.Load())
	assert.Equal(t, 2, rec.count())
}

func TestHeartbeatStop(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rec := &hbRecorder{}
	h := NewHeartbeat(hbConfig(), fc, rec.send, nil)

	h.Start()
	fc.BlockUntil(1)
	h.Stop()

	fc.Advance(time.Hour)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, rec.count())

	// 重复 Stop 为空操作
	assert.NotPanics(t, h.Stop)
}

func TestHeartbeatDisabled(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rec := &hbRecorder{}
	h := NewHeartbeat(HeartbeatConfig{Enabled: false, Interval: time.Second, PingPayload: "x"}, fc, rec.send, nil)

	h.Start()
	assert.NotPanics(t, h.Stop)
	assert.Equal(t, 0, rec.count())
}

func TestHeartbeatSendFailureClearsPending(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rec := &hbRecorder{fail: true}
	h := NewHeartbeat(hbConfig(), fc, rec.send, nil)

	h.Start()
	defer h.Stop()

	fc.BlockUntil(1)
	fc.Advance(30 * time.Second)

	// 发送失败不留下待应答的 ping
	require.Eventually(t, func() bool {
		_, ok := h.HandlePong()
		return !ok
	}, time.Second, time.Millisecond)
	assert.Equal(t, int64(0), h.Missed())
}
