package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// Logger provides leveled console output for CLI applications
type Logger struct {
	Level      LogLevel
	ShowEmojis bool
	SilentMode bool
	Out        io.Writer
}

// NewLogger creates a new logger writing to stdout
func NewLogger() *Logger {
	return &Logger{
		Level:      LogLevelInfo,
		ShowEmojis: true,
		Out:        os.Stdout,
	}
}

// SetSilentMode enables or disables silent mode
func (l *Logger) SetSilentMode(silent bool) {
	l.SilentMode = silent
}

func (l *Logger) prefix(emoji, plain string) string {
	if l.ShowEmojis {
		return emoji
	}
	return plain
}

// Header prints a formatted header
func (l *Logger) Header(title string) {
	if l.SilentMode {
		return
	}

	fmt.Fprintf(l.Out, "\n%s %s\n", l.prefix("🎯", "***"), strings.ToUpper(title))
	fmt.Fprintf(l.Out, "%s\n", strings.Repeat("=", len(title)+5))
}

// Section prints a formatted section header
func (l *Logger) Section(title string) {
	if l.SilentMode {
		return
	}

	fmt.Fprintf(l.Out, "\n%s %s\n", l.prefix("📋", "---"), title)
	fmt.Fprintf(l.Out, "%s\n", strings.Repeat("-", len(title)+5))
}

// Info prints an info message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.SilentMode || l.Level < LogLevelInfo {
		return
	}
	fmt.Fprintf(l.Out, "%s  %s\n", l.prefix("ℹ️", "[INFO]"), fmt.Sprintf(format, args...))
}

// Error prints an error message, even in silent mode
func (l *Logger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.Out, "%s %s\n", l.prefix("❌", "[ERROR]"), fmt.Sprintf(format, args...))
}

// Success prints a success message
func (l *Logger) Success(format string, args ...interface{}) {
	if l.SilentMode {
		return
	}
	fmt.Fprintf(l.Out, "%s %s\n", l.prefix("✅", "[SUCCESS]"), fmt.Sprintf(format, args...))
}

// Warn prints a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.Level < LogLevelWarn {
		return
	}
	fmt.Fprintf(l.Out, "%s  %s\n", l.prefix("⚠️", "[WARN]"), fmt.Sprintf(format, args...))
}

// Debug prints a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.Level < LogLevelDebug {
		return
	}
	fmt.Fprintf(l.Out, "%s %s\n", l.prefix("🔍", "[DEBUG]"), fmt.Sprintf(format, args...))
}

// Progress prints a progress message
func (l *Logger) Progress(format string, args ...interface{}) {
	if l.SilentMode {
		return
	}
	fmt.Fprintf(l.Out, "%s %s\n", l.prefix("🔄", "[PROGRESS]"), fmt.Sprintf(format, args...))
}

// EnvLoader loads .env files
type EnvLoader struct {
	logger *Logger
}

// NewEnvLoader creates a new environment loader
func NewEnvLoader(logger *Logger) *EnvLoader {
	return &EnvLoader{logger: logger}
}

// LoadEnvFile loads environment variables from path (".env" when empty).
// A missing file is not an error; variables already set are kept.
func (e *EnvLoader) LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		e.logger.Debug("Environment file %s not found, using system environment", path)
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		e.logger.Warn("Could not load environment file %s: %v", path, err)
		return err
	}

	e.logger.Debug("Environment loaded from %s", path)
	return nil
}

// GetEnvWithDefault gets an environment variable with a default value
func (e *EnvLoader) GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ResolvePath resolves a bare file name into defaultDir and adds defaultExt
// when the name has no extension
func ResolvePath(path, defaultDir, defaultExt string) string {
	if path == "" {
		return ""
	}

	if defaultExt != "" && filepath.Ext(path) == "" {
		path += defaultExt
	}

	if defaultDir != "" && !strings.ContainsAny(path, "/\\") {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return filepath.Join(defaultDir, path)
	}

	return path
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
