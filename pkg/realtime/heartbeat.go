// pkg/realtime/heartbeat.go
package realtime

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/destia/realtime/pkg/logger"
	"github.com/jonboulle/clockwork"
)

// Heartbeat 应用层心跳
// 周期性发送 ping 载荷并从 pong 应答计算往返延迟
type Heartbeat struct {
	cfg   HeartbeatConfig
	clock clockwork.Clock
	send  func(data []byte) bool
	log   logger.Logger

	// onMissed 在某次 ping 未得到应答时回调，可为 nil
	onMissed func()

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}

	pendingMu sync.Mutex
	pending   bool
	sentAt    time.Time

	latency atomic.Int64
	missed  atomic.Int64
}

// NewHeartbeat 创建心跳监视器，send 为底层发送函数
func NewHeartbeat(cfg HeartbeatConfig, clock clockwork.Clock, send func(data []byte) bool, log logger.Logger) *Heartbeat {
	if log == nil {
		log = logger.NewNoop()
	}
	return &Heartbeat{
		cfg:   cfg,
		clock: clock,
		send:  send,
		log:   log,
	}
}

// Start 为当前连接启动心跳循环，重复调用为空操作
func (h *Heartbeat) Start() {
	if !h.cfg.Enabled {
		return
	}
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.stopCh = make(chan struct{})
	stopCh := h.stopCh
	h.mu.Unlock()

	h.pendingMu.Lock()
	h.pending = false
	h.pendingMu.Unlock()

	go h.loop(stopCh)
}

// Stop 停止心跳循环
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	h.running = false
	close(h.stopCh)
}

func (h *Heartbeat) loop(stopCh chan struct{}) {
	ticker := h.clock.NewTicker(h.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.Chan():
			h.beat()
		}
	}
}

// beat 发送一次 ping，上一次 ping 尚未应答则计为丢失
func (h *Heartbeat) beat() {
	h.pendingMu.Lock()
	if h.pending {
		h.missed.Add(1)
		h.log.Warn("heartbeat pong missed", "missed_total", h.missed.Load())
		if h.onMissed != nil {
			h.onMissed()
		}
	}
	h.pending = true
	h.sentAt = h.clock.Now()
	h.pendingMu.Unlock()

	if !h.send([]byte(h.cfg.PingPayload)) {
		h.pendingMu.Lock()
		h.pending = false
		h.pendingMu.Unlock()
	}
}

// HandlePong 处理一条 pong 应答，返回本次往返延迟
// 没有待应答的 ping 时返回 false
func (h *Heartbeat) HandlePong() (time.Duration, bool) {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()
	if !h.pending {
		return 0, false
	}
	h.pending = false
	d := h.clock.Since(h.sentAt)
	h.latency.Store(int64(d))
	return d, true
}

// Latency 返回最近一次心跳往返延迟
func (h *Heartbeat) Latency() time.Duration {
	return time.Duration(h.latency.Load())
}

// Missed 返回累计丢失的 pong 数
func (h *Heartbeat) Missed() int64 {
	return h.missed.Load()
}
