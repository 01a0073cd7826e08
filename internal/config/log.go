package config

import (
	"fmt"

	"go.uber.org/zap"
)

type logEntry struct {
	level   string
	message string
}

// Log buffers messages emitted while loading configuration, before the real
// logger exists, so they can be replayed once zap is initialized.
type Log struct {
	entries []logEntry
}

func (l *Log) Infof(format string, args ...any) {
	l.entries = append(l.entries, logEntry{level: "info", message: fmt.Sprintf(format, args...)})
}

func (l *Log) Warnf(format string, args ...any) {
	l.entries = append(l.entries, logEntry{level: "warn", message: fmt.Sprintf(format, args...)})
}

func (l *Log) FlushToZap(logger *zap.Logger) {
	for _, entry := range l.entries {
		switch entry.level {
		case "warn":
			logger.Warn(entry.message)
		default:
			logger.Info(entry.message)
		}
	}
	l.entries = nil
}
