// Package notify is the side channel for user-facing messages: the sync
// engine and the persistence layer report through it instead of failing
// their callers. The UI surfaces these as toasts; headless runs log them.
package notify

import "log/slog"

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier delivers one user-facing message.
type Notifier interface {
	Notify(level Level, message string)
}

// Func adapts a function to the Notifier interface.
type Func func(level Level, message string)

func (f Func) Notify(level Level, message string) {
	f(level, message)
}

// Log is a Notifier that writes to structured logging, used when no UI is
// attached.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Notify(level Level, message string) {
	switch level {
	case LevelWarning:
		l.logger.Warn(message, "notice", level)
	case LevelError:
		l.logger.Error(message, "notice", level)
	default:
		l.logger.Info(message, "notice", level)
	}
}

// Discard drops every message. Test helper and safe default.
var Discard Notifier = Func(func(Level, string) {})
