// pkg/logging/logging.go - timestamped structured logging for trim runs.
//
// Package-level Info/Warn/Error/Debug wrap a single package-global Logger,
// following the teacher's convenience-function pattern. Unlike the
// teacher's installer logger, this one has no timestamped log directories,
// retention policy, or JSON/YAML sinks: a trim run is a single short-lived
// process whose output is the console plus whatever the caller captures.

package logging

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sys/windows"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the string representation of the LogLevel.
func (ll LogLevel) String() string {
	switch ll {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config/flag string ("ERROR", "WARN", "INFO", "DEBUG")
// to a LogLevel, defaulting to LevelInfo on an unrecognized value.
func ParseLevel(s string) LogLevel {
	switch s {
	case "ERROR":
		return LevelError
	case "WARN":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
)

// Logger prints leveled, timestamped messages to an output stream. Safe for
// concurrent use, though the trim driver itself is single-threaded.
type Logger struct {
	mu       sync.Mutex
	out      *log.Logger
	logLevel LogLevel
}

// New returns a Logger writing to stderr at LevelInfo.
func New() *Logger {
	enableColors()
	return &Logger{
		out:      log.New(os.Stderr, "", 0),
		logLevel: LevelInfo,
	}
}

// SetLevel changes the minimum level this logger emits.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logLevel = level
}

func (l *Logger) logAt(level LogLevel, color, message string, keyValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level > l.logLevel {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	line := fmt.Sprintf("%s[%s] %-5s %s", color, ts, level.String(), message)
	for i := 0; i+1 < len(keyValues); i += 2 {
		line += fmt.Sprintf(" %v=%v", keyValues[i], keyValues[i+1])
	}
	l.out.Printf("%s%s", line, colorReset)
}

func (l *Logger) Info(message string, keyValues ...interface{})  { l.logAt(LevelInfo, "", message, keyValues...) }
func (l *Logger) Debug(message string, keyValues ...interface{}) { l.logAt(LevelDebug, colorBlue, message, keyValues...) }
func (l *Logger) Warn(message string, keyValues ...interface{})  { l.logAt(LevelWarn, colorYellow, message, keyValues...) }
func (l *Logger) Error(message string, keyValues ...interface{}) { l.logAt(LevelError, colorRed, message, keyValues...) }

// singleton instance, initialized on first use so library packages (e.g.
// hostprobe) can log without the caller wiring a Logger through explicitly.
var (
	instance *Logger
	once     sync.Once
)

func get() *Logger {
	once.Do(func() { instance = New() })
	return instance
}

// Init installs level as the package-global logger's minimum level. Called
// once from cmd/winapp2trim after flags/config are resolved.
func Init(level LogLevel) {
	get().SetLevel(level)
}

func Info(message string, keyValues ...interface{})  { get().Info(message, keyValues...) }
func Debug(message string, keyValues ...interface{}) { get().Debug(message, keyValues...) }
func Warn(message string, keyValues ...interface{})  { get().Warn(message, keyValues...) }
func Error(message string, keyValues ...interface{}) { get().Error(message, keyValues...) }

// enableColors turns on ANSI virtual terminal processing for the console
// this process is attached to, matching the teacher's console setup.
func enableColors() {
	if runtime.GOOS != "windows" {
		return
	}
	handle := windows.Handle(os.Stderr.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err == nil {
		mode |= windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING
		_ = windows.SetConsoleMode(handle, mode)
	}
}
