package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClientConfig 测试配置结构
type testClientConfig struct {
	Realtime struct {
		URL       string `mapstructure:"url" validate:"required,url"`
		Debug     bool   `mapstructure:"debug"`
		Reconnect struct {
			Enabled     bool          `mapstructure:"enabled"`
			MaxAttempts int           `mapstructure:"max_attempts" validate:"min=0"`
			BaseDelay   time.Duration `mapstructure:"base_delay"`
		} `mapstructure:"reconnect"`
	} `mapstructure:"realtime"`
}

// writeTestConfig 创建测试配置文件
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestManagerLoadFile 测试加载配置文件
func TestManagerLoadFile(t *testing.T) {
	path := writeTestConfig(t, `
realtime:
  url: "wss://api.destia.io/ws/notifications/"
  debug: true
  reconnect:
    enabled: true
    max_attempts: 5
    base_delay: 100ms
`)

	m := NewManager()
	require.NoError(t, m.LoadFile(path))

	assert.Equal(t, "wss://api.destia.io/ws/notifications/", m.GetString("realtime.url"))
	assert.True(t, m.GetBool("realtime.debug"))
	assert.True(t, m.IsSet("realtime.reconnect.max_attempts"))
}

// TestManagerLoadFileNotFound 测试配置文件不存在
func TestManagerLoadFileNotFound(t *testing.T) {
	m := NewManager()
	assert.Error(t, m.LoadFile("/nonexistent/config.yaml"))
}

// TestManagerUnmarshal 测试解析到结构体
func TestManagerUnmarshal(t *testing.T) {
	path := writeTestConfig(t, `
realtime:
  url: "wss://api.destia.io/ws/notifications/"
  reconnect:
    enabled: true
    max_attempts: 3
    base_delay: 250ms
`)

	m := NewManager()
	require.NoError(t, m.LoadFile(path))

	var cfg testClientConfig
	require.NoError(t, m.Unmarshal(&cfg))

	assert.Equal(t, "wss://api.destia.io/ws/notifications/", cfg.Realtime.URL)
	assert.True(t, cfg.Realtime.Reconnect.Enabled)
	assert.Equal(t, 3, cfg.Realtime.Reconnect.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Realtime.Reconnect.BaseDelay)
}

// TestManagerUnmarshalKey 测试解析指定路径
func TestManagerUnmarshalKey(t *testing.T) {
	path := writeTestConfig(t, `
realtime:
  reconnect:
    enabled: true
    max_attempts: 7
`)

	m := NewManager()
	require.NoError(t, m.LoadFile(path))

	var rc struct {
		Enabled     bool `mapstructure:"enabled"`
		MaxAttempts int  `mapstructure:"max_attempts"`
	}
	require.NoError(t, m.UnmarshalKey("realtime.reconnect", &rc))
	assert.True(t, rc.Enabled)
	assert.Equal(t, 7, rc.MaxAttempts)
}

// TestManagerDefaults 测试默认值选项
func TestManagerDefaults(t *testing.T) {
	m := NewManager(WithDefaults(map[string]any{
		"realtime.reconnect.max_attempts": 5,
	}))

	assert.Equal(t, "5", m.GetString("realtime.reconnect.max_attempts"))
}

// TestValidator 测试配置验证
func TestValidator(t *testing.T) {
	v := NewValidator()

	var cfg testClientConfig
	cfg.Realtime.URL = "not a url"
	err := v.Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)

	cfg.Realtime.URL = "wss://api.destia.io/ws/"
	assert.NoError(t, v.Validate(cfg))

	assert.ErrorIs(t, v.Validate(nil), ErrNilConfig)
}
