// pkg/realtime/types.go
package realtime

import "time"

// ConnectionState 连接状态
type ConnectionState int32

const (
	// StateDisconnected 未连接
	StateDisconnected ConnectionState = iota
	// StateConnecting 连接中（含重连等待）
	StateConnecting
	// StateConnected 已连接
	StateConnected
	// StateDisconnecting 主动断开中
	StateDisconnecting
	// StateError 终态错误（重连耗尽或重连被禁用）
	StateError
)

// String 返回连接状态的字符串表示
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Stats 运行时统计快照
type Stats struct {
	// TotalMessages 历史缓冲中的消息数
	TotalMessages int `json:"total_messages"`
	// AverageLatency 最近一次心跳往返延迟
	// 仅保留单个样本，不做历史平均
	AverageLatency time.Duration `json:"average_latency"`
	// Uptime 当前连接的持续时长；未连接时为 0
	Uptime time.Duration `json:"uptime"`
	// MissedPongs 未收到回应的心跳数
	MissedPongs int64 `json:"missed_pongs"`
}
