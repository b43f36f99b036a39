// Package logger is the process-wide zap logger of the taikoshift commands.
// People read the console output on stderr; the optional log file gets JSON
// lines rotated by lumberjack. Every entry carries the running command.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalLogger *zap.Logger
	once         sync.Once
)

type Config struct {
	Level   string
	Command string
	// File is a log file, or a directory (existing, or written with a
	// trailing separator) holding one taikoshift-<command>.log per command
	// so long running serve and watch sessions keep separate histories.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// FilePath is where the log file of c goes, or "" for console only.
func (c Config) FilePath() string {
	if c.File == "" {
		return ""
	}
	isDir := strings.HasSuffix(c.File, string(os.PathSeparator)) || strings.HasSuffix(c.File, "/")
	if !isDir {
		if info, err := os.Stat(c.File); err == nil && info.IsDir() {
			isDir = true
		}
	}
	if !isDir {
		return c.File
	}
	name := "taikoshift.log"
	if c.Command != "" {
		name = "taikoshift-" + c.Command + ".log"
	}
	return filepath.Join(c.File, name)
}

// ParseLevel accepts zap's level names in any case; anything else is info.
func ParseLevel(s string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// New builds a logger writing to console and, when configured, to the log
// file.
func New(c Config, console zapcore.WriteSyncer) (*zap.Logger, error) {
	level := ParseLevel(c.Level)

	consoleEncoder := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoder), console, level)

	if path := c.FilePath(); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating log dir: %w", err)
		}
		fileEncoder := zap.NewProductionEncoderConfig()
		fileEncoder.TimeKey = "timestamp"
		fileEncoder.EncodeTime = zapcore.RFC3339TimeEncoder
		fileEncoder.EncodeDuration = zapcore.StringDurationEncoder
		fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoder), zapcore.AddSync(&lumberjack.Logger{
			Filename:   path,
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
			Compress:   c.Compress,
		}), level)
		core = zapcore.NewTee(core, fileCore)
	}

	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	if c.Command != "" {
		l = l.With(zap.String("cmd", c.Command))
	}
	return l, nil
}

// InitLogger sets up the process-wide logger once. Until then every
// package-level function is a no-op, so library use and tests stay silent.
func InitLogger(c Config) error {
	var err error
	once.Do(func() {
		globalLogger, err = New(c, zapcore.Lock(os.Stderr))
	})
	return err
}

func Debug(msg string, fields ...zap.Field) {
	if globalLogger != nil {
		globalLogger.Debug(msg, fields...)
	}
}

func Info(msg string, fields ...zap.Field) {
	if globalLogger != nil {
		globalLogger.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...zap.Field) {
	if globalLogger != nil {
		globalLogger.Warn(msg, fields...)
	}
}

func Error(msg string, fields ...zap.Field) {
	if globalLogger != nil {
		globalLogger.Error(msg, fields...)
	}
}

// Sync flushes buffered entries.
func Sync() {
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}

func String(key, val string) zap.Field { return zap.String(key, val) }
func Int(key string, val int) zap.Field { return zap.Int(key, val) }
func Int64(key string, val int64) zap.Field { return zap.Int64(key, val) }
func Float64(key string, val float64) zap.Field { return zap.Float64(key, val) }
func Bool(key string, val bool) zap.Field { return zap.Bool(key, val) }
func ErrorField(err error) zap.Field { return zap.Error(err) }

func Duration(key string, val time.Duration) zap.Field { return zap.Duration(key, val) }
