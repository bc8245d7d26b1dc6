package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu sync.RWMutex
	lg *zap.SugaredLogger
)

// Init builds the process logger (called once from main).
func Init(level string) {
	lvl := zapcore.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		z = zap.NewExample()
	}

	mu.Lock()
	lg = z.Sugar()
	mu.Unlock()
}

// L returns the sugared logger, initialising it at info level on first use.
func L() *zap.SugaredLogger {
	mu.RLock()
	l := lg
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init("info")
	mu.RLock()
	defer mu.RUnlock()
	return lg
}

func Sync() { _ = L().Sync() }

func Infof(format string, v ...any) {
	L().Infof(format, v...)
}

func Warnf(format string, v ...any) {
	L().Warnf(format, v...)
}

func Errorf(format string, v ...any) {
	L().Errorf(format, v...)
}

func Debugf(format string, v ...any) {
	L().Debugf(format, v...)
}

// Infow logs a message with structured key/value pairs.
func Infow(msg string, keysAndValues ...any) {
	L().Infow(msg, keysAndValues...)
}

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" -> "jo***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := []rune(parts[0])
	if len(name) > 2 {
		return string(name[:2]) + "***@" + parts[1]
	}
	return "***@" + parts[1]
}
