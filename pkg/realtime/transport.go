// pkg/realtime/transport.go
package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// CloseError 连接关闭时携带的关闭码与原因
type CloseError struct {
	Code   int
	Reason string
}

// Error 实现 error 接口
func (e *CloseError) Error() string {
	return fmt.Sprintf("realtime: connection closed: code=%d reason=%q", e.Code, e.Reason)
}

// Clean 关闭码 1000 视为干净关闭
func (e *CloseError) Clean() bool {
	return e.Code == websocket.CloseNormalClosure
}

// Conn 一条已建立的连接
type Conn interface {
	// ReadMessage 阻塞读取下一帧，连接关闭时返回 *CloseError 或底层错误
	ReadMessage() ([]byte, error)
	// WriteMessage 写出一个文本帧，deadline 控制单次写超时
	WriteMessage(data []byte, deadline time.Time) error
	// Close 发送关闭帧并关闭底层连接
	Close(code int, reason string) error
}

// Dialer 建立连接的拨号器
type Dialer interface {
	// Dial 对指定地址发起握手，协商 protocols 中的子协议
	Dial(ctx context.Context, url string, protocols []string, header http.Header) (Conn, error)
}

// wsDialer 基于 gorilla/websocket 的拨号器
type wsDialer struct {
	handshakeTimeout  time.Duration
	enableCompression bool
}

// NewDialer 创建默认拨号器
func NewDialer(handshakeTimeout time.Duration, enableCompression bool) Dialer {
	return &wsDialer{
		handshakeTimeout:  handshakeTimeout,
		enableCompression: enableCompression,
	}
}

// Dial 对指定地址发起握手
func (d *wsDialer) Dial(ctx context.Context, url string, protocols []string, header http.Header) (Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout:  d.handshakeTimeout,
		Subprotocols:      protocols,
		EnableCompression: d.enableCompression,
		Proxy:             http.ProxyFromEnvironment,
	}
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("realtime: dial %s failed with status %d: %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("realtime: dial %s failed: %w", url, err)
	}
	return &wsConn{conn: conn}, nil
}

// wsConn 包装 gorilla 连接，串行化写操作
type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// ReadMessage 阻塞读取下一帧
func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			return nil, &CloseError{Code: ce.Code, Reason: ce.Text}
		}
		return nil, err
	}
	return data, nil
}

// WriteMessage 写出一个文本帧
func (c *wsConn) WriteMessage(data []byte, deadline time.Time) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close 发送关闭帧后关闭底层连接
func (c *wsConn) Close(code int, reason string) error {
	c.writeMu.Lock()
	deadline := time.Now().Add(time.Second)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), deadline)
	c.writeMu.Unlock()
	return c.conn.Close()
}
