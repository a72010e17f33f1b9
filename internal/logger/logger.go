// Package logger provides leveled logging for docsync.
// The default level only prints errors; --verbose enables info messages
// and --debug enables everything, so users can follow a sync pass.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level orders log messages by importance.
type Level int

// Log levels, from quietest to noisiest.
const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the lower-case level name.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelError, fmt.Errorf("unknown log level %q", s)
	}
}

var (
	mu     sync.RWMutex
	level  = LevelError
	output io.Writer = os.Stderr
)

// SetLevel sets the most verbose level that is printed.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// GetLevel returns the current level.
func GetLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// Enabled reports whether messages at l are printed.
func Enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l <= level
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(l Level, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l <= level {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug prints a message at debug level.
func Debug(format string, args ...any) {
	logf(LevelDebug, "[DEBUG] ", format, args...)
}

// Section prints a section header at debug level.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if level >= LevelDebug {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints a message at info level.
func Info(format string, args ...any) {
	logf(LevelInfo, "[INFO] ", format, args...)
}

// Warn prints a message at warn level.
func Warn(format string, args ...any) {
	logf(LevelWarn, "[WARN] ", format, args...)
}

// Error prints a message. Errors are always printed.
func Error(format string, args ...any) {
	logf(LevelError, "[ERROR] ", format, args...)
}
