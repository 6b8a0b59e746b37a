// Package logger wraps the standard logger with severity levels and a
// ring buffer of recent entries, exposed over the HTTP API for
// debugging batch runs.
package logger

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Level represents log severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Entry represents a single log entry
type Entry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// Logger writes leveled messages to the standard logger and keeps the
// most recent entries in a ring buffer.
type Logger struct {
	mu       sync.RWMutex
	minLevel Level
	entries  []Entry
	size     int
	pos      int
}

// New creates a Logger retaining bufferSize entries at LevelInfo.
func New(bufferSize int) *Logger {
	return &Logger{
		minLevel: LevelInfo,
		entries:  make([]Entry, bufferSize),
		size:     bufferSize,
	}
}

// SetLevel changes the minimum severity that gets recorded.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.minLevel {
		return
	}

	msg := fmt.Sprintf(format, args...)
	log.Printf("[%s] %s", level.String(), msg)

	l.entries[l.pos] = Entry{
		Timestamp: time.Now().Format("2006-01-02 15:04:05.000"),
		Level:     level.String(),
		Message:   msg,
	}
	l.pos = (l.pos + 1) % l.size
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// GetEntries returns the buffered entries in chronological order.
func (l *Logger) GetEntries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]Entry, 0, l.size)
	for i := 0; i < l.size; i++ {
		idx := (l.pos + i) % l.size
		if l.entries[idx].Timestamp != "" {
			result = append(result, l.entries[idx])
		}
	}
	return result
}
