// pkg/realtime/errors.go
package realtime

import "errors"

var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("realtime: invalid config")
	// ErrInvalidURL URL 无效或 scheme 不是 ws/wss
	ErrInvalidURL = errors.New("realtime: invalid url")
	// ErrNotConnected 连接未建立
	ErrNotConnected = errors.New("realtime: not connected")
	// ErrAlreadyConnected 连接已建立或正在建立
	ErrAlreadyConnected = errors.New("realtime: already connected")
	// ErrClientClosed 客户端已关闭
	ErrClientClosed = errors.New("realtime: client closed")
	// ErrReconnectExhausted 重连次数耗尽
	ErrReconnectExhausted = errors.New("realtime: reconnect attempts exhausted")
	// ErrReconnectDisabled 自动重连被禁用
	ErrReconnectDisabled = errors.New("realtime: reconnect disabled")
	// ErrHandlerNotFound 取消订阅时未找到对应处理器
	ErrHandlerNotFound = errors.New("realtime: handler not found")
)
