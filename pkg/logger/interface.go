// pkg/logger/interface.go
package logger

// Logger 日志接口
// 其他 pkg 模块引用此接口，避免直接依赖具体实现
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})

	// Named 创建具名的子 logger
	Named(name string) Logger
	// WithFields 附加固定字段
	WithFields(keysAndValues ...interface{}) Logger

	// Sync 刷新缓冲
	Sync() error
}
