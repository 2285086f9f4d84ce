// pkg/realtime/message.go
package realtime

import (
	"time"

	"github.com/destia/realtime/pkg/serializer"
)

const (
	// MessageTypePing 心跳请求
	MessageTypePing = "ping"
	// MessageTypePong 心跳应答
	MessageTypePong = "pong"
	// MessageTypeSubscribe 分类订阅请求
	MessageTypeSubscribe = "subscribe"
	// MessageTypeSubscribeConfirmed 分类订阅确认
	MessageTypeSubscribeConfirmed = "subscription_confirmed"
	// MessageTypeUnknown 无 type 字段的 JSON 帧
	MessageTypeUnknown = "unknown"
	// MessageTypeRaw 非 JSON 帧
	MessageTypeRaw = "raw"

	// WildcardType 通配订阅，匹配所有消息类型
	WildcardType = "*"
)

// Message 收到的一条消息
type Message struct {
	// Type 消息类型，取自信封的 type 字段
	Type string `json:"type"`
	// Payload 信封的 payload 字段；信封没有该字段时为解码后的完整对象，raw 帧为原始文本
	Payload interface{} `json:"payload"`
	// Timestamp 收到时刻
	Timestamp time.Time `json:"timestamp"`
}

// decodeFrame 把一个入站帧解码为 Message
// 无法反序列化的帧归为 raw，缺少 type 字段的帧归为 unknown
func decodeFrame(s serializer.Serializer, data []byte, now time.Time) *Message {
	msg := &Message{Timestamp: now}

	var envelope map[string]interface{}
	if err := s.Deserialize(data, &envelope); err != nil {
		msg.Type = MessageTypeRaw
		msg.Payload = string(data)
		return msg
	}

	if t, ok := envelope["type"].(string); ok && t != "" {
		msg.Type = t
	} else {
		msg.Type = MessageTypeUnknown
	}
	if p, ok := envelope["payload"]; ok {
		msg.Payload = p
	} else {
		msg.Payload = envelope
	}
	return msg
}
