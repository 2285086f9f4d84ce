// pkg/serializer/msgpack.go
package serializer

import (
	"bytes"
	"reflect"

	"github.com/hashicorp/go-msgpack/v2/codec"

	"github.com/destia/realtime/pkg/pool/bytebuff"
)

// msgpackHandle msgpack 编解码配置
// RawToString=true，MapType=map[string]interface{}，与 JSON 解码结果保持一致
var msgpackHandle = &codec.MsgpackHandle{}

func init() {
	msgpackHandle.MapType = reflect.TypeOf(map[string]interface{}{})
	msgpackHandle.RawToString = true
}

// defaultSizeHint 默认的 buffer 容量提示
const defaultSizeHint = 256

// Msgpack msgpack 序列化器
type Msgpack struct{}

// NewMsgpack 创建 msgpack 序列化器
func NewMsgpack() *Msgpack {
	return &Msgpack{}
}

// Serialize 序列化为 msgpack
func (s *Msgpack) Serialize(v any) ([]byte, error) {
	buf := bytebuff.Get(defaultSizeHint)
	defer bytebuff.Put(buf)

	enc := codec.NewEncoder(buf, msgpackHandle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	// 复制数据，buf 会被回收复用
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// Deserialize 从 msgpack 反序列化
func (s *Msgpack) Deserialize(data []byte, v any) error {
	dec := codec.NewDecoder(bytes.NewReader(data), msgpackHandle)
	return dec.Decode(v)
}

// ContentType 返回内容类型
func (s *Msgpack) ContentType() string {
	return "application/msgpack"
}
