// pkg/realtime/client.go
package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/destia/realtime/pkg/logger"
	"github.com/destia/realtime/pkg/serializer"
	"github.com/destia/realtime/pkg/util/conc"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

// defaultCallbackWorkers 生命周期回调的协程池大小
const defaultCallbackWorkers = 4

// Client 具备自动重连与应用层心跳的实时客户端
//
// 状态机:
//
//	Disconnected -> Connecting -> Connected
//	Connected    -> Disconnecting -> Disconnected   (主动断开，关闭码 1000)
//	Connected    -> Connecting                      (异常断开后自动重连)
//	Connecting   -> Error                           (重连耗尽或被禁用)
type Client struct {
	cfg        *Config
	log        logger.Logger
	clock      clockwork.Clock
	dialer     Dialer
	serializer serializer.Serializer
	metrics    *Metrics

	router      *Router
	history     *HistoryBuffer
	heartbeat   *Heartbeat
	reconnector *Reconnector
	workers     *conc.Pool[struct{}]

	mu          sync.Mutex
	conn        Conn
	connectedAt time.Time
	lastErr     error
	// gen 代号在 Connect 与主动断开时递增
	// 用于丢弃过期的拨号结果与重连排期
	gen uint64

	state  atomic.Int32
	closed atomic.Bool

	onConnect      func()
	onDisconnect   func(closeErr *CloseError)
	onReconnecting func(attempt int, delay time.Duration)
	onError        func(err error)
}

// New 创建客户端
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:        cfg,
		log:        logger.NewNoop(),
		clock:      clockwork.NewRealClock(),
		serializer: serializer.NewJSON(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dialer == nil {
		c.dialer = NewDialer(cfg.DialTimeout, cfg.EnableCompression)
	}

	c.router = NewRouter(c.log)
	c.history = NewHistoryBuffer(cfg.HistoryCapacity)
	c.reconnector = NewReconnector(cfg.Reconnect, c.clock, c.log)
	c.heartbeat = NewHeartbeat(cfg.Heartbeat, c.clock, c.sendRaw, c.log)
	c.heartbeat.onMissed = func() { c.metrics.ObserveMissedPong() }
	c.workers = conc.NewPool[struct{}](defaultCallbackWorkers)
	c.state.Store(int32(StateDisconnected))
	return c, nil
}

// Connect 发起连接并立即返回，结果通过状态与回调观察
// 已在连接中或已连接时返回 ErrAlreadyConnected
// 从 Error 态调用会清零重连计数重新开始
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}

	c.mu.Lock()
	switch ConnectionState(c.state.Load()) {
	case StateConnecting, StateConnected, StateDisconnecting:
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.gen++
	myGen := c.gen
	c.lastErr = nil
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	c.reconnector.Reset()
	if err := c.workers.Submit(func() (struct{}, error) {
		_ = c.dial(ctx, myGen)
		return struct{}{}, nil
	}); err != nil {
		go func() { _ = c.dial(ctx, myGen) }()
	}
	return nil
}

// Disconnect 主动断开连接，取消所有待触发的重连排期
// 从任意状态调用后进入 Disconnected
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.gen++
	conn := c.conn
	c.conn = nil
	c.connectedAt = time.Time{}
	if conn != nil {
		c.setStateLocked(StateDisconnecting)
	}
	c.mu.Unlock()

	c.reconnector.CancelPending()
	c.heartbeat.Stop()

	if conn != nil {
		_ = conn.Close(websocket.CloseNormalClosure, "client disconnect")
	}

	c.mu.Lock()
	c.lastErr = nil
	c.setStateLocked(StateDisconnected)
	c.mu.Unlock()

	if conn != nil {
		c.metrics.ObserveDisconnect("clean")
		c.log.Info("disconnected")
		if c.onDisconnect != nil {
			ce := &CloseError{Code: websocket.CloseNormalClosure, Reason: "client disconnect"}
			c.emit(func() { c.onDisconnect(ce) })
		}
	}
}

// Close 断开连接并释放客户端资源，之后客户端不可再用
func (c *Client) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.Disconnect()
	c.router.Clear()
	c.workers.Release()
}

// dial 执行一次拨号并在成功后启动读循环与心跳
func (c *Client) dial(ctx context.Context, myGen uint64) error {
	urlStr, err := c.cfg.buildURL()
	if err != nil {
		return err
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	defer cancel()

	conn, err := c.dialer.Dial(dialCtx, urlStr, c.cfg.Protocols, c.cfg.Headers)
	if err != nil {
		c.handleDialError(myGen, err)
		return err
	}

	c.mu.Lock()
	if c.closed.Load() || c.gen != myGen || ConnectionState(c.state.Load()) != StateConnecting {
		c.mu.Unlock()
		_ = conn.Close(websocket.CloseNormalClosure, "superseded")
		return nil
	}
	c.conn = conn
	c.connectedAt = c.clock.Now()
	c.setStateLocked(StateConnected)
	c.mu.Unlock()

	c.reconnector.Reset()
	c.metrics.ObserveConnect()
	c.heartbeat.Start()
	go c.readLoop(conn, myGen)

	c.log.Info("connected", "url", c.cfg.URL)
	if c.onConnect != nil {
		c.emit(c.onConnect)
	}
	return nil
}

// handleDialError 处理拨号失败，必要时安排下一次重连
func (c *Client) handleDialError(myGen uint64, err error) {
	c.mu.Lock()
	if c.gen != myGen || ConnectionState(c.state.Load()) != StateConnecting {
		c.mu.Unlock()
		return
	}
	c.lastErr = err
	c.mu.Unlock()

	c.log.Warn("dial failed", "error", err)
	c.emitError(err)
	c.maybeReconnect(myGen)
}

// readLoop 读取入站帧直到连接关闭
func (c *Client) readLoop(conn Conn, myGen uint64) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			c.handleReadError(conn, myGen, err)
			return
		}
		c.handleFrame(data)
	}
}

// handleFrame 解码并分发一个入站帧
// pong 应答在此被消化，不进历史也不分发
func (c *Client) handleFrame(data []byte) {
	msg := decodeFrame(c.serializer, data, c.clock.Now())
	c.metrics.ObserveReceived(msg.Type)

	if msg.Type == MessageTypePong {
		if d, ok := c.heartbeat.HandlePong(); ok {
			c.metrics.ObserveLatency(d)
			if c.cfg.Debug {
				c.log.Debug("pong received", "latency", d)
			}
		}
		return
	}

	c.history.Append(msg)
	c.router.Dispatch(msg)
}

// handleReadError 处理读循环退出
// 关闭码 1000 视为干净关闭进入 Disconnected，其余触发重连
func (c *Client) handleReadError(conn Conn, myGen uint64, err error) {
	c.mu.Lock()
	if c.conn != conn {
		// 主动断开或连接已被替换，过期事件直接丢弃
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.connectedAt = time.Time{}

	var ce *CloseError
	if !errors.As(err, &ce) {
		ce = &CloseError{Code: websocket.CloseAbnormalClosure, Reason: err.Error()}
	}

	if ce.Clean() {
		c.gen++
		c.setStateLocked(StateDisconnected)
		c.mu.Unlock()

		c.heartbeat.Stop()
		c.metrics.ObserveDisconnect("clean")
		c.log.Info("connection closed", "code", ce.Code, "reason", ce.Reason)
		if c.onDisconnect != nil {
			c.emit(func() { c.onDisconnect(ce) })
		}
		return
	}

	c.lastErr = ce
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	c.heartbeat.Stop()
	c.metrics.ObserveDisconnect("abnormal")
	c.log.Warn("connection lost", "code", ce.Code, "reason", ce.Reason)
	if c.onDisconnect != nil {
		c.emit(func() { c.onDisconnect(ce) })
	}
	c.emitError(ce)
	c.maybeReconnect(myGen)
}

// maybeReconnect 安排下一次重连，失败时进入终态 Error
func (c *Client) maybeReconnect(myGen uint64) {
	delay, err := c.reconnector.Schedule(func() {
		_ = c.dial(context.Background(), myGen)
	})
	if err != nil {
		c.mu.Lock()
		if c.gen == myGen {
			c.lastErr = err
			c.setStateLocked(StateError)
		}
		c.mu.Unlock()
		c.log.Error("reconnect abandoned", "error", err)
		c.emitError(err)
		return
	}

	c.metrics.ObserveReconnect()
	if c.onReconnecting != nil {
		attempt := c.reconnector.Attempt()
		c.emit(func() { c.onReconnecting(attempt, delay) })
	}
}

// Send 发送一个原始帧，成功返回 true
// 未连接时返回 false，不产生错误
func (c *Client) Send(data []byte) bool {
	ok := c.sendRaw(data)
	c.metrics.ObserveSent(ok)
	return ok
}

// SendJSON 序列化 v 后发送，成功返回 true
// 序列化失败返回 false，不发送任何帧
func (c *Client) SendJSON(v interface{}) bool {
	data, err := c.serializer.Serialize(v)
	if err != nil {
		c.log.Warn("serialize failed", "error", err)
		c.metrics.ObserveSent(false)
		return false
	}
	return c.Send(data)
}

// SubscribeCategories 向服务器发送分类订阅请求
// 服务器以 subscription_confirmed 消息确认
func (c *Client) SubscribeCategories(categories ...string) bool {
	return c.SendJSON(map[string]interface{}{
		"type":       MessageTypeSubscribe,
		"categories": categories,
	})
}

// sendRaw 不经序列化直接写出一帧，连接不可用时返回 false
func (c *Client) sendRaw(data []byte) bool {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return false
	}
	if err := conn.WriteMessage(data, c.clock.Now().Add(c.cfg.WriteTimeout)); err != nil {
		c.log.Warn("write failed", "error", err)
		return false
	}
	return true
}

// Subscribe 订阅指定类型的消息，返回取消订阅函数
// 使用 WildcardType 可订阅所有类型，此时回调收到完整 *Message
func (c *Client) Subscribe(messageType string, handler Handler) func() {
	return c.router.Subscribe(messageType, handler)
}

// State 返回当前连接状态
func (c *Client) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// Err 返回最近一次连接错误，无错误时为 nil
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ReconnectAttempt 返回当前重连计数
func (c *Client) ReconnectAttempt() int {
	return c.reconnector.Attempt()
}

// LastMessage 返回最近收到的一条消息
func (c *Client) LastMessage() *Message {
	return c.history.Last()
}

// Messages 返回历史消息快照，从旧到新
func (c *Client) Messages() []*Message {
	return c.history.All()
}

// ClearHistory 清空历史消息
func (c *Client) ClearHistory() {
	c.history.Clear()
}

// Latency 返回最近一次心跳往返延迟
func (c *Client) Latency() time.Duration {
	return c.heartbeat.Latency()
}

// Stats 返回运行时统计快照
func (c *Client) Stats() Stats {
	c.mu.Lock()
	connectedAt := c.connectedAt
	c.mu.Unlock()

	var uptime time.Duration
	if !connectedAt.IsZero() {
		uptime = c.clock.Since(connectedAt)
	}
	return Stats{
		TotalMessages:  c.history.Len(),
		AverageLatency: c.heartbeat.Latency(),
		Uptime:         uptime,
		MissedPongs:    c.heartbeat.Missed(),
	}
}

// setStateLocked 更新状态，调用方需持有 c.mu
func (c *Client) setStateLocked(s ConnectionState) {
	old := ConnectionState(c.state.Swap(int32(s)))
	if old != s {
		c.metrics.ObserveState(s)
		if c.cfg.Debug {
			c.log.Debug("state changed", "from", old.String(), "to", s.String())
		}
	}
}

// emit 在协程池中执行回调，池不可用时同步执行
func (c *Client) emit(fn func()) {
	if fn == nil {
		return
	}
	if err := c.workers.Submit(func() (struct{}, error) {
		fn()
		return struct{}{}, nil
	}); err != nil {
		fn()
	}
}

func (c *Client) emitError(err error) {
	if c.onError == nil {
		return
	}
	c.emit(func() { c.onError(err) })
}
