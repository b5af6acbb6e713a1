package resultcache

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is a tiny leveled logger. Provide an adapter around logging stack.
// If Logger is nil in Options, logging is disabled.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// LogFunc adapts a single sink function to Logger.
type LogFunc func(level Level, msg string, f Fields)

var _ Logger = LogFunc(nil)

func (fn LogFunc) Debug(msg string, f Fields) { fn(LevelDebug, msg, f) }
func (fn LogFunc) Info(msg string, f Fields)  { fn(LevelInfo, msg, f) }
func (fn LogFunc) Warn(msg string, f Fields)  { fn(LevelWarn, msg, f) }
func (fn LogFunc) Error(msg string, f Fields) { fn(LevelError, msg, f) }
