package logger

import "github.com/robfig/cron/v3"

type cronLogger struct{}

// Cron adapts the process logger to the cron.Logger interface.
func Cron() cron.Logger {
	return cronLogger{}
}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	L().Debugw("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	L().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
