// pkg/realtime/history.go
package realtime

import "sync"

// HistoryBuffer 固定容量的消息历史缓冲
// 超出容量时淘汰最旧的消息
type HistoryBuffer struct {
	mu       sync.RWMutex
	messages []*Message
	capacity int
}

// NewHistoryBuffer 创建历史缓冲，capacity 非正时使用默认容量
func NewHistoryBuffer(capacity int) *HistoryBuffer {
	if capacity <= 0 {
		capacity = defaultHistoryCapacity
	}
	return &HistoryBuffer{
		messages: make([]*Message, 0, capacity),
		capacity: capacity,
	}
}

// Append 追加一条消息，必要时淘汰最旧的一条
func (b *HistoryBuffer) Append(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.messages) >= b.capacity {
		n := copy(b.messages, b.messages[1:])
		b.messages = b.messages[:n]
	}
	b.messages = append(b.messages, msg)
}

// Last 返回最近一条消息，缓冲为空时返回 nil
func (b *HistoryBuffer) Last() *Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.messages) == 0 {
		return nil
	}
	return b.messages[len(b.messages)-1]
}

// All 返回从旧到新的消息快照
func (b *HistoryBuffer) All() []*Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Message, len(b.messages))
	copy(out, b.messages)
	return out
}

// Len 返回当前消息数
func (b *HistoryBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.messages)
}

// Clear 清空缓冲
func (b *HistoryBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = b.messages[:0]
}
