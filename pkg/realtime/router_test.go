// pkg/realtime/router_test.go
package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testMessage(messageType string) *Message {
	return &Message{
		Type:      messageType,
		Payload:   map[string]interface{}{"type": messageType},
		Timestamp: time.Now(),
	}
}

func TestRouterDispatchOrder(t *testing.T) {
	r := NewRouter(nil)

	var order []string
	r.Subscribe("event", func(interface{}) { order = append(order, "first") })
	r.Subscribe("event", func(interface{}) { order = append(order, "second") })
	r.Subscribe(WildcardType, func(interface{}) { order = append(order, "wildcard") })

	r.Dispatch(testMessage("event"))

	// 具名订阅按注册顺序调用，通配订阅最后
	assert.Equal(t, []string{"first", "second", "wildcard"}, order)
}

func TestRouterUnsubscribeIdempotent(t *testing.T) {
	r := NewRouter(nil)

	var calls int
	cancel := r.Subscribe("event", func(interface{}) { calls++ })
	assert.Equal(t, 1, r.HandlerCount("event"))

	cancel()
	cancel()
	assert.Equal(t, 0, r.HandlerCount("event"))

	r.Dispatch(testMessage("event"))
	assert.Equal(t, 0, calls)
}

func TestRouterUnsubscribeKeepsOthers(t *testing.T) {
	r := NewRouter(nil)

	var a, b int
	cancelA := r.Subscribe("event", func(interface{}) { a++ })
	r.Subscribe("event", func(interface{}) { b++ })

	cancelA()
	r.Dispatch(testMessage("event"))

	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
}

func TestRouterPanicIsolation(t *testing.T) {
	r := NewRouter(nil)

	var survived bool
	r.Subscribe("event", func(interface{}) { panic("handler boom") })
	r.Subscribe("event", func(interface{}) { survived = true })

	assert.NotPanics(t, func() {
		r.Dispatch(testMessage("event"))
	})
	assert.True(t, survived)
}

func TestRouterDispatchSnapshot(t *testing.T) {
	r := NewRouter(nil)

	var late int
	r.Subscribe("event", func(interface{}) {
		// 分发中注册的订阅对本次分发不生效
		r.Subscribe("event", func(interface{}) { late++ })
	})

	r.Dispatch(testMessage("event"))
	assert.Equal(t, 0, late)

	r.Dispatch(testMessage("event"))
	assert.Equal(t, 1, late)
}

func TestRouterWildcardReceivesMessage(t *testing.T) {
	r := NewRouter(nil)

	var got interface{}
	r.Subscribe(WildcardType, func(payload interface{}) { got = payload })

	msg := testMessage("anything")
	r.Dispatch(msg)

	assert.Same(t, msg, got)
}

func TestRouterNilHandler(t *testing.T) {
	r := NewRouter(nil)
	cancel := r.Subscribe("event", nil)
	assert.Equal(t, 0, r.HandlerCount("event"))
	assert.NotPanics(t, cancel)
}

func TestRouterClear(t *testing.T) {
	r := NewRouter(nil)
	r.Subscribe("a", func(interface{}) {})
	r.Subscribe("b", func(interface{}) {})

	r.Clear()
	assert.Equal(t, 0, r.HandlerCount("a"))
	assert.Equal(t, 0, r.HandlerCount("b"))
}
