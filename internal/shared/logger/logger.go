package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Logger provides a simple structured logging interface
type Logger struct {
	logger *log.Logger
}

// NewLogger creates a new logger instance
func NewLogger() *Logger {
	return &Logger{
		logger: log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds),
	}
}

// format renders key/value pairs as k=v tokens after the message
func (l *Logger) format(level, msg string, keysAndValues []interface{}) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(level)
	b.WriteString("] ")
	b.WriteString(msg)

	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprintf("%v", keysAndValues[i])
		value := interface{}("MISSING")
		if i+1 < len(keysAndValues) {
			value = keysAndValues[i+1]
		}
		b.WriteString(fmt.Sprintf(" %s=%v", key, value))
	}

	return b.String()
}

// Info logs an informational message
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Print(l.format("INFO", msg, keysAndValues))
}

// Error logs an error message
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Print(l.format("ERROR", msg, keysAndValues))
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Print(l.format("DEBUG", msg, keysAndValues))
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Print(l.format("WARN", msg, keysAndValues))
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.logger.Fatal(l.format("FATAL", msg, keysAndValues))
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return nil
}
