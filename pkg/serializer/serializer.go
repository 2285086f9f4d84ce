package serializer

import "encoding/json"

// Serializer 序列化器接口
type Serializer interface {
	// Serialize 序列化
	Serialize(v any) ([]byte, error)
	// Deserialize 反序列化
	Deserialize(data []byte, v any) error
	// ContentType 内容类型（用于日志追踪）
	ContentType() string
}

// ===============================
// JSON 序列化器
// ===============================

// JSON JSON 序列化器
type JSON struct{}

// NewJSON 创建 JSON 序列化器
func NewJSON() *JSON {
	return &JSON{}
}

// Serialize 序列化为 JSON
func (s *JSON) Serialize(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Deserialize 从 JSON 反序列化
func (s *JSON) Deserialize(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ContentType 返回内容类型
func (s *JSON) ContentType() string {
	return "application/json"
}

// ===============================
// 默认序列化器
// ===============================

var defaultSerializer Serializer = NewJSON()

// SetDefault 设置默认序列化器
func SetDefault(s Serializer) {
	if s != nil {
		defaultSerializer = s
	}
}

// Default 获取默认序列化器
func Default() Serializer {
	return defaultSerializer
}
