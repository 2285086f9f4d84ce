// pkg/realtime/options.go
package realtime

import (
	"time"

	"github.com/destia/realtime/pkg/logger"
	"github.com/destia/realtime/pkg/serializer"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

// Option 客户端可选参数
type Option func(*Client)

// WithLogger 设置日志器
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithDialer 设置拨号器，测试时可注入假实现
func WithDialer(d Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

// WithClock 设置时钟，测试时可注入假时钟
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithSerializer 设置消息编解码器
func WithSerializer(s serializer.Serializer) Option {
	return func(c *Client) {
		if s != nil {
			c.serializer = s
		}
	}
}

// WithMetrics 注册客户端指标到指定的 Registerer
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.metrics = NewMetrics(reg)
	}
}

// WithOnConnect 设置建连成功回调
func WithOnConnect(fn func()) Option {
	return func(c *Client) {
		c.onConnect = fn
	}
}

// WithOnDisconnect 设置连接关闭回调，closeErr 携带关闭码与原因
func WithOnDisconnect(fn func(closeErr *CloseError)) Option {
	return func(c *Client) {
		c.onDisconnect = fn
	}
}

// WithOnReconnecting 设置重连排期回调
func WithOnReconnecting(fn func(attempt int, delay time.Duration)) Option {
	return func(c *Client) {
		c.onReconnecting = fn
	}
}

// WithOnError 设置错误回调
func WithOnError(fn func(err error)) Option {
	return func(c *Client) {
		c.onError = fn
	}
}
