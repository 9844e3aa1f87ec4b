package logging

import "github.com/robfig/cron/v3"

// CronLogger adapts a Logger to cron.Logger. Cron's Info chatter is logged
// at debug level.
func CronLogger(l Logger) cron.Logger {
	return cronLogger{l: l}
}

type cronLogger struct {
	l Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
