// Package logger provides the process-wide diagnostic log. Until Init is
// called every function is a no-op.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger = zap.NewNop().Sugar()
	logFile      *os.File
	mu           sync.Mutex
)

// Options controls where log lines go.
type Options struct {
	// Verbose also writes debug-and-above lines to Console.
	Verbose bool
	// Console receives verbose output. Defaults to os.Stderr.
	Console io.Writer
}

// Init initializes the global logger with the specified log file path.
func Init(logPath string) error {
	return InitWithOptions(logPath, Options{})
}

// InitWithOptions initializes the global logger, optionally tee'ing to a console.
func InitWithOptions(logPath string, opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000")
	encCfg.EncodeCaller = nil

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), zapcore.DebugLevel),
	}
	if opts.Verbose {
		console := opts.Console
		if console == nil {
			console = os.Stderr
		}
		consoleCfg := encCfg
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.AddSync(console), zapcore.DebugLevel))
	}

	logFile = f
	globalLogger = zap.New(zapcore.NewTee(cores...)).Sugar()

	return nil
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
}

func closeLocked() {
	_ = globalLogger.Sync()
	globalLogger = zap.NewNop().Sugar()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	globalLogger.Infof(format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	globalLogger.Debugf(format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	globalLogger.Errorf(format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	globalLogger.Warnf(format, v...)
}

// With returns a logger carrying the given key/value pairs, for components
// that log many lines about the same subject (one session, one scenario).
func With(keysAndValues ...interface{}) *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()

	return globalLogger.With(keysAndValues...)
}
