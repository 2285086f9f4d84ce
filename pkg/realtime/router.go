// pkg/realtime/router.go
package realtime

import (
	"sync"

	"github.com/destia/realtime/pkg/logger"
	"github.com/google/uuid"
)

// Handler 消息处理回调
// 具名类型的订阅收到解码后的载荷，通配订阅收到完整 *Message
type Handler func(payload interface{})

type subscription struct {
	id      string
	handler Handler
}

// Router 按消息类型分发入站消息
type Router struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
	log      logger.Logger
}

// NewRouter 创建消息路由器
func NewRouter(log logger.Logger) *Router {
	if log == nil {
		log = logger.NewNoop()
	}
	return &Router{
		handlers: make(map[string][]subscription),
		log:      log,
	}
}

// Subscribe 注册指定类型的处理器，返回用于取消订阅的函数
// 同一类型的处理器按注册顺序调用
func (r *Router) Subscribe(messageType string, handler Handler) func() {
	if handler == nil {
		return func() {}
	}
	id := uuid.NewString()

	r.mu.Lock()
	r.handlers[messageType] = append(r.handlers[messageType], subscription{id: id, handler: handler})
	r.mu.Unlock()

	return func() { r.unsubscribe(messageType, id) }
}

// unsubscribe 取消订阅，重复调用为空操作
func (r *Router) unsubscribe(messageType, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.handlers[messageType]
	for i, s := range subs {
		if s.id == id {
			r.handlers[messageType] = append(subs[:i:i], subs[i+1:]...)
			if len(r.handlers[messageType]) == 0 {
				delete(r.handlers, messageType)
			}
			return
		}
	}
}

// Dispatch 分发一条消息：先具名类型处理器，再通配处理器
// 分发基于快照，回调中的订阅变更对本次分发不生效
func (r *Router) Dispatch(msg *Message) {
	r.mu.RLock()
	typed := make([]subscription, len(r.handlers[msg.Type]))
	copy(typed, r.handlers[msg.Type])
	wild := make([]subscription, len(r.handlers[WildcardType]))
	copy(wild, r.handlers[WildcardType])
	r.mu.RUnlock()

	for _, s := range typed {
		r.invoke(s, msg.Type, msg.Payload)
	}
	for _, s := range wild {
		r.invoke(s, msg.Type, msg)
	}
}

// invoke 调用单个处理器，panic 不影响其余处理器
func (r *Router) invoke(s subscription, messageType string, arg interface{}) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("message handler panic",
				"message_type", messageType,
				"subscription_id", s.id,
				"panic", rec)
		}
	}()
	s.handler(arg)
}

// HandlerCount 返回指定类型的处理器数量
func (r *Router) HandlerCount(messageType string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[messageType])
}

// Clear 移除所有处理器
func (r *Router) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = make(map[string][]subscription)
}
