// Package logging provides structured logging for the host: a JSON log
// rotated per the configured policy and a human-readable console log, both
// behind slog. Per-service file loggers share the same rotation rules. The
// real-time audio callbacks never log; anything they need to report is a
// metrics counter.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tphakala/plughost/internal/conf"
)

// LevelFatal sits above Error; logging at it exits the process.
const LevelFatal = slog.Level(12)

var (
	loggerMu   sync.RWMutex
	baseLogger *slog.Logger

	currentLogLevel = new(slog.LevelVar)
	initOnce        sync.Once
)

// replaceAttr trims timestamps to second precision and names the custom
// fatal level.
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		a.Value = slog.StringValue(a.Value.Time().Format("2006-01-02T15:04:05Z07:00"))
	}
	if a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok && level == LevelFatal {
			a.Value = slog.StringValue("FATAL")
		}
	}
	return a
}

// Init initializes the global logger from the main log configuration: a
// rotating JSON file per cfg plus a text handler on the console. With the
// file log disabled only the console handler is installed.
func Init(cfg conf.LogConfig) {
	initOnce.Do(func() {
		currentLogLevel.Set(slog.LevelInfo)

		handler := slog.Handler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:       currentLogLevel,
			ReplaceAttr: replaceAttr,
		}))

		if cfg.Enabled {
			writer, err := newRotatingWriter(cfg.Path, cfg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "file logging disabled: %v\n", err)
			} else {
				handler = &teeHandler{
					console: handler,
					file: slog.NewJSONHandler(writer, &slog.HandlerOptions{
						Level:       currentLogLevel,
						ReplaceAttr: replaceAttr,
					}),
				}
			}
		}

		loggerMu.Lock()
		baseLogger = slog.New(handler)
		loggerMu.Unlock()
		slog.SetDefault(baseLogger)
	})
}

// teeHandler fans each record out to the console and the rotating file.
type teeHandler struct {
	console slog.Handler
	file    slog.Handler
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.console.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	if h.console.Enabled(ctx, r.Level) {
		firstErr = h.console.Handle(ctx, r.Clone())
	}
	if h.file.Enabled(ctx, r.Level) {
		if err := h.file.Handle(ctx, r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{
		console: h.console.WithAttrs(attrs),
		file:    h.file.WithAttrs(attrs),
	}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{
		console: h.console.WithGroup(name),
		file:    h.file.WithGroup(name),
	}
}

// newRotatingWriter builds a lumberjack writer honoring the configured
// rotation policy. Lumberjack rotates on size and prunes on age, so the
// time-based policies map to age caps on a 100 MB rotation size: daily
// prunes backups older than one day and keeps at most 30, weekly prunes
// backups older than seven days and keeps at most four. Size-based rotation
// takes its threshold from cfg.MaxSize.
func newRotatingWriter(path string, cfg conf.LogConfig) (*lumberjack.Logger, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory %s: %w", dir, err)
		}
	}

	lj := &lumberjack.Logger{Filename: path}
	switch cfg.Rotation {
	case conf.RotationDaily:
		lj.MaxAge = 1
		lj.MaxBackups = 30
		lj.MaxSize = 100
	case conf.RotationWeekly:
		lj.MaxAge = 7
		lj.MaxBackups = 4
		lj.MaxSize = 100
	case conf.RotationSize:
		lj.MaxSize = sizeMB(cfg.MaxSize)
		lj.MaxBackups = 3
	default:
		// Unknown policy: fall back to size-based with the configured cap.
		lj.MaxSize = sizeMB(cfg.MaxSize)
		lj.MaxBackups = 3
	}
	return lj, nil
}

func sizeMB(bytes int64) int {
	mb := int(bytes / (1024 * 1024))
	if mb <= 0 {
		mb = 10
	}
	return mb
}

// SetLevel changes the logging level for every logger built by this package.
func SetLevel(level slog.Level) {
	currentLogLevel.Set(level)
}

// ForService returns the global logger tagged with the service name.
// Returns nil if Init has not been called, letting callers fall back to
// slog.Default.
func ForService(serviceName string) *slog.Logger {
	loggerMu.RLock()
	logger := baseLogger
	loggerMu.RUnlock()
	if logger == nil {
		return nil
	}
	return logger.With("service", serviceName)
}

// NewFileLogger creates a standalone JSON logger for one service, writing
// to its own rotating file under the same rotation policy as the main log.
// Returns the logger, a close function for the underlying writer, and an
// error if the log location cannot be prepared.
func NewFileLogger(path, serviceName string, cfg conf.LogConfig, level *slog.LevelVar) (*slog.Logger, func() error, error) {
	writer, err := newRotatingWriter(path, cfg)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	})
	logger := slog.New(handler).With("service", serviceName)
	return logger, writer.Close, nil
}

// --- Convenience functions using the default logger ---

// Debug logs a debug message using the default slog logger.
func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// Info logs an info message using the default slog logger.
func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

// Warn logs a warning message using the default slog logger.
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// Error logs an error message using the default slog logger.
func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}

// Fatal logs at the fatal level and exits.
func Fatal(msg string, args ...any) {
	slog.Log(context.Background(), LevelFatal, msg, args...)
	os.Exit(1)
}
