// pkg/realtime/reconnect.go
package realtime

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/destia/realtime/pkg/logger"
	"github.com/jonboulle/clockwork"
)

// Reconnector 指数退避重连策略
type Reconnector struct {
	cfg   ReconnectConfig
	clock clockwork.Clock
	log   logger.Logger

	mu      sync.Mutex
	attempt int
	cancel  chan struct{}
}

// NewReconnector 创建重连策略
func NewReconnector(cfg ReconnectConfig, clock clockwork.Clock, log logger.Logger) *Reconnector {
	if log == nil {
		log = logger.NewNoop()
	}
	return &Reconnector{
		cfg:   cfg,
		clock: clock,
		log:   log,
	}
}

// NextDelay 计算第 attempt 次重连的延迟
// delay = BaseDelay * Multiplier^attempt，受 MaxDelay 与 Jitter 调整
func (r *Reconnector) NextDelay(attempt int) time.Duration {
	d := time.Duration(float64(r.cfg.BaseDelay) * math.Pow(r.cfg.Multiplier, float64(attempt)))
	if r.cfg.MaxDelay > 0 && d > r.cfg.MaxDelay {
		d = r.cfg.MaxDelay
	}
	if r.cfg.Jitter > 0 {
		d += time.Duration(rand.Float64() * r.cfg.Jitter * float64(d))
	}
	return d
}

// Schedule 安排一次延迟重连，fn 在延迟到期后执行
// 重连被禁用返回 ErrReconnectDisabled，次数耗尽返回 ErrReconnectExhausted
func (r *Reconnector) Schedule(fn func()) (time.Duration, error) {
	if !r.cfg.Enabled {
		return 0, ErrReconnectDisabled
	}

	r.mu.Lock()
	if r.cfg.MaxAttempts > 0 && r.attempt >= r.cfg.MaxAttempts {
		r.mu.Unlock()
		return 0, ErrReconnectExhausted
	}
	delay := r.NextDelay(r.attempt)
	r.attempt++
	attempt := r.attempt

	// 新的排期作废上一个还未触发的排期
	if r.cancel != nil {
		close(r.cancel)
	}
	cancel := make(chan struct{})
	r.cancel = cancel
	r.mu.Unlock()

	r.log.Info("reconnect scheduled",
		"attempt", attempt,
		"delay", delay)

	timer := r.clock.NewTimer(delay)
	go func() {
		defer timer.Stop()
		select {
		case <-cancel:
		case <-timer.Chan():
			// 取消与到期同时就绪时 select 随机选取
			// 到期分支需再次确认未被取消，保证取消必定生效
			select {
			case <-cancel:
			default:
				fn()
			}
		}
	}()
	return delay, nil
}

// CancelPending 取消尚未触发的重连排期
func (r *Reconnector) CancelPending() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		close(r.cancel)
		r.cancel = nil
	}
}

// Reset 连接成功建立后清零重连计数
func (r *Reconnector) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempt = 0
}

// Attempt 返回当前重连计数
func (r *Reconnector) Attempt() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempt
}
