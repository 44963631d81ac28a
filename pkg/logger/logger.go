package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity level of log messages.
type LogLevel int

// Log level constants defining message severity.
const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "INFO"
}

// ParseLogLevel converts a string log level to its LogLevel constant.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// Config describes where and how the logger writes.
// An empty Path logs to stdout only.
type Config struct {
	Path       string
	Level      LogLevel
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// Logger provides leveled logging with optional file rotation.
type Logger struct {
	loggers map[LogLevel]*log.Logger
	level   LogLevel
	mu      sync.RWMutex
}

var (
	instance *Logger
	mu       sync.RWMutex
)

// InitWithConfig builds the global logger. Later calls replace it.
func InitWithConfig(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	SetDefault(l)
	return nil
}

// SetDefault installs l as the global logger.
func SetDefault(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	instance = l
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// New creates a logger writing to stdout and, when cfg.Path is set, to a rotating file.
func New(cfg Config) (*Logger, error) {
	if cfg.Path == "" {
		return NewWithWriter(os.Stdout, cfg.Level), nil
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create log directory %s: %w", dir, err)
	}

	logFile := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	return NewWithWriter(io.MultiWriter(os.Stdout, logFile), cfg.Level), nil
}

// NewWithWriter creates a logger writing every level to w.
func NewWithWriter(w io.Writer, level LogLevel) *Logger {
	flags := log.LstdFlags | log.Lshortfile
	l := &Logger{
		loggers: make(map[LogLevel]*log.Logger, len(levelNames)),
		level:   level,
	}
	for lvl, name := range levelNames {
		l.loggers[lvl] = log.New(w, "["+name+"] ", flags)
	}
	return l
}

// SetLevel changes the minimum log level for filtering messages.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current minimum log level.
func (l *Logger) GetLevel() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *Logger) shouldLog(level LogLevel) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

// output writes at the given level; depth is the caller depth for Lshortfile.
func (l *Logger) output(level LogLevel, depth int, msg string) {
	if !l.shouldLog(level) {
		return
	}
	l.loggers[level].Output(depth+1, msg)
	if level == FATAL {
		os.Exit(1)
	}
}

// Debugf logs a formatted debug-level message.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.output(DEBUG, 2, fmt.Sprintf(format, v...))
}

// Infof logs a formatted info-level message.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.output(INFO, 2, fmt.Sprintf(format, v...))
}

// Warnf logs a formatted warning-level message.
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.output(WARN, 2, fmt.Sprintf(format, v...))
}

// Errorf logs a formatted error-level message.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.output(ERROR, 2, fmt.Sprintf(format, v...))
}

// Fatalf logs a formatted fatal-level message and exits the program.
func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.output(FATAL, 2, fmt.Sprintf(format, v...))
}

// Global convenience functions

// Debugf logs a formatted debug-level message using the global logger instance.
func Debugf(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.output(DEBUG, 2, fmt.Sprintf(format, v...))
	}
}

// Infof logs a formatted info-level message using the global logger instance.
func Infof(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.output(INFO, 2, fmt.Sprintf(format, v...))
	}
}

// Warnf logs a formatted warning-level message using the global logger instance.
func Warnf(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.output(WARN, 2, fmt.Sprintf(format, v...))
	}
}

// Errorf logs a formatted error-level message using the global logger instance.
func Errorf(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.output(ERROR, 2, fmt.Sprintf(format, v...))
	}
}

// Fatalf logs a formatted fatal-level message and exits the program using the global logger instance.
func Fatalf(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.output(FATAL, 2, fmt.Sprintf(format, v...))
	}
	os.Exit(1)
}

// SetLevel changes the minimum log level for the global logger instance.
func SetLevel(level LogLevel) {
	if l := current(); l != nil {
		l.SetLevel(level)
	}
}

// GetLevel returns the current minimum log level of the global logger instance.
func GetLevel() LogLevel {
	if l := current(); l != nil {
		return l.GetLevel()
	}
	return INFO
}
