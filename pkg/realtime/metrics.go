// pkg/realtime/metrics.go
package realtime

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 客户端运行指标
type Metrics struct {
	connectsTotal    prometheus.Counter
	disconnectsTotal *prometheus.CounterVec
	reconnectsTotal  prometheus.Counter
	messagesReceived *prometheus.CounterVec
	messagesSent     prometheus.Counter
	sendFailures     prometheus.Counter
	heartbeatLatency prometheus.Histogram
	missedPongs      prometheus.Counter
	connectionState  prometheus.Gauge
}

// NewMetrics 创建并注册客户端指标
// reg 为 nil 时指标只创建不注册
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "realtime",
			Subsystem: "client",
			Name:      "connects_total",
			Help:      "Total number of successfully opened connections.",
		}),
		disconnectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "realtime",
			Subsystem: "client",
			Name:      "disconnects_total",
			Help:      "Total number of connection closures by kind.",
		}, []string{"kind"}),
		reconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "realtime",
			Subsystem: "client",
			Name:      "reconnect_attempts_total",
			Help:      "Total number of scheduled reconnect attempts.",
		}),
		messagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "realtime",
			Subsystem: "client",
			Name:      "messages_received_total",
			Help:      "Total number of received messages by type.",
		}, []string{"type"}),
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "realtime",
			Subsystem: "client",
			Name:      "messages_sent_total",
			Help:      "Total number of sent messages.",
		}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "realtime",
			Subsystem: "client",
			Name:      "send_failures_total",
			Help:      "Total number of failed sends.",
		}),
		heartbeatLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "realtime",
			Subsystem: "client",
			Name:      "heartbeat_latency_seconds",
			Help:      "Round trip latency of application heartbeats.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		missedPongs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "realtime",
			Subsystem: "client",
			Name:      "missed_pongs_total",
			Help:      "Total number of heartbeats without a pong reply.",
		}),
		connectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "realtime",
			Subsystem: "client",
			Name:      "connection_state",
			Help:      "Current connection state as an enum value.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.connectsTotal,
			m.disconnectsTotal,
			m.reconnectsTotal,
			m.messagesReceived,
			m.messagesSent,
			m.sendFailures,
			m.heartbeatLatency,
			m.missedPongs,
			m.connectionState,
		)
	}
	return m
}

// ObserveConnect 记录一次成功建连
func (m *Metrics) ObserveConnect() {
	if m == nil {
		return
	}
	m.connectsTotal.Inc()
}

// ObserveDisconnect 记录一次连接关闭，kind 为 clean 或 abnormal
func (m *Metrics) ObserveDisconnect(kind string) {
	if m == nil {
		return
	}
	m.disconnectsTotal.WithLabelValues(kind).Inc()
}

// ObserveReconnect 记录一次重连排期
func (m *Metrics) ObserveReconnect() {
	if m == nil {
		return
	}
	m.reconnectsTotal.Inc()
}

// ObserveReceived 记录一条入站消息
func (m *Metrics) ObserveReceived(messageType string) {
	if m == nil {
		return
	}
	m.messagesReceived.WithLabelValues(messageType).Inc()
}

// ObserveSent 记录一次发送结果
func (m *Metrics) ObserveSent(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.messagesSent.Inc()
	} else {
		m.sendFailures.Inc()
	}
}

// ObserveLatency 记录一次心跳往返延迟
func (m *Metrics) ObserveLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.heartbeatLatency.Observe(d.Seconds())
}

// ObserveMissedPong 记录一次心跳应答丢失
func (m *Metrics) ObserveMissedPong() {
	if m == nil {
		return
	}
	m.missedPongs.Inc()
}

// ObserveState 记录连接状态变化
func (m *Metrics) ObserveState(s ConnectionState) {
	if m == nil {
		return
	}
	m.connectionState.Set(float64(s))
}
