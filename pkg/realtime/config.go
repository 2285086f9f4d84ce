// pkg/realtime/config.go
package realtime

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultDialTimeout      = 10 * time.Second
	defaultWriteTimeout     = 10 * time.Second
	defaultHistoryCapacity  = 100
	defaultHeartbeatPayload = `{"type":"ping"}`
)

// Config 客户端配置
type Config struct {
	// URL 服务器地址，必须是 ws:// 或 wss://
	URL string `mapstructure:"url" json:"url" yaml:"url" validate:"required"`
	// AuthToken 鉴权令牌，非空时以 token 查询参数附加到 URL
	AuthToken string `mapstructure:"auth_token" json:"auth_token" yaml:"auth_token"`
	// Protocols 子协议列表
	Protocols []string `mapstructure:"protocols" json:"protocols" yaml:"protocols"`
	// Headers 握手时附加的 HTTP 头
	Headers http.Header `mapstructure:"-" json:"-" yaml:"-"`
	// DialTimeout 握手超时
	DialTimeout time.Duration `mapstructure:"dial_timeout" json:"dial_timeout" yaml:"dial_timeout"`
	// WriteTimeout 单次写超时
	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"write_timeout" yaml:"write_timeout"`
	// HistoryCapacity 消息历史缓冲容量
	HistoryCapacity int `mapstructure:"history_capacity" json:"history_capacity" yaml:"history_capacity"`
	// EnableCompression 是否启用 permessage-deflate
	EnableCompression bool `mapstructure:"enable_compression" json:"enable_compression" yaml:"enable_compression"`
	// Debug 调试日志开关
	Debug bool `mapstructure:"debug" json:"debug" yaml:"debug"`

	// Reconnect 重连策略
	Reconnect ReconnectConfig `mapstructure:"reconnect" json:"reconnect" yaml:"reconnect"`
	// Heartbeat 心跳配置
	Heartbeat HeartbeatConfig `mapstructure:"heartbeat" json:"heartbeat" yaml:"heartbeat"`
}

// ReconnectConfig 重连配置
type ReconnectConfig struct {
	// Enabled 是否在异常断开后自动重连
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	// MaxAttempts 最大重连次数，0 表示不限制
	MaxAttempts int `mapstructure:"max_attempts" json:"max_attempts" yaml:"max_attempts"`
	// BaseDelay 首次重连延迟
	BaseDelay time.Duration `mapstructure:"base_delay" json:"base_delay" yaml:"base_delay"`
	// Multiplier 延迟倍增系数
	Multiplier float64 `mapstructure:"multiplier" json:"multiplier" yaml:"multiplier"`
	// MaxDelay 延迟上限，0 表示不封顶
	MaxDelay time.Duration `mapstructure:"max_delay" json:"max_delay" yaml:"max_delay"`
	// Jitter 随机抖动比例 [0,1)，0 表示无抖动
	Jitter float64 `mapstructure:"jitter" json:"jitter" yaml:"jitter" validate:"gte=0,lt=1"`
}

// HeartbeatConfig 心跳配置
type HeartbeatConfig struct {
	// Enabled 是否启用应用层心跳
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	// Interval 心跳间隔
	Interval time.Duration `mapstructure:"interval" json:"interval" yaml:"interval"`
	// PingPayload 心跳帧内容，JSON 文本
	PingPayload string `mapstructure:"ping_payload" json:"ping_payload" yaml:"ping_payload"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		DialTimeout:     defaultDialTimeout,
		WriteTimeout:    defaultWriteTimeout,
		HistoryCapacity: defaultHistoryCapacity,
		Reconnect:       DefaultReconnectConfig(),
		Heartbeat:       DefaultHeartbeatConfig(),
	}
}

// DefaultReconnectConfig 返回默认重连配置
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		Enabled:     true,
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		Multiplier:  2.0,
	}
}

// DefaultHeartbeatConfig 返回默认心跳配置
func DefaultHeartbeatConfig() HeartbeatConfig {
	return HeartbeatConfig{
		Enabled:     true,
		Interval:    30 * time.Second,
		PingPayload: defaultHeartbeatPayload,
	}
}

// Validate 校验配置并修复零值字段
func (c *Config) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}
	if err := c.validateURL(); err != nil {
		return err
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	if c.HistoryCapacity <= 0 {
		c.HistoryCapacity = defaultHistoryCapacity
	}
	if err := c.Reconnect.Validate(); err != nil {
		return err
	}
	return c.Heartbeat.Validate()
}

func (c *Config) validateURL() error {
	if c.URL == "" {
		return ErrInvalidURL
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return ErrInvalidURL
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "ws" && scheme != "wss" {
		return ErrInvalidURL
	}
	if u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// Validate 校验重连配置并修复零值字段
func (rc *ReconnectConfig) Validate() error {
	if rc.MaxAttempts < 0 {
		rc.MaxAttempts = 0
	}
	if rc.BaseDelay <= 0 {
		rc.BaseDelay = 100 * time.Millisecond
	}
	if rc.Multiplier < 1 {
		rc.Multiplier = 2.0
	}
	if rc.Jitter < 0 || rc.Jitter >= 1 {
		rc.Jitter = 0
	}
	return nil
}

// Validate 校验心跳配置并修复零值字段
func (hc *HeartbeatConfig) Validate() error {
	if hc.Interval <= 0 {
		hc.Interval = 30 * time.Second
	}
	if hc.PingPayload == "" {
		hc.PingPayload = defaultHeartbeatPayload
	}
	return nil
}

// buildURL 拼接鉴权令牌后的最终连接地址
func (c *Config) buildURL() (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", ErrInvalidURL
	}
	if c.AuthToken != "" {
		q := u.Query()
		q.Set("token", c.AuthToken)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
