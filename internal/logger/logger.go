package logger

import (
	"io"
	"log/slog"
	"os"
)

var log *slog.Logger

// Init installs the process-wide logger. Development gets a debug-level text handler,
// everything else a JSON handler.
func Init(env string) {
	InitWithWriter(env, os.Stdout)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(env string, w io.Writer) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	log = slog.New(handler)
	slog.SetDefault(log)
}

// Get returns the global logger, initializing a development logger if needed.
func Get() *slog.Logger {
	if log == nil {
		Init("development")
	}
	return log
}

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }

func Info(msg string, args ...any) { Get().Info(msg, args...) }

func Warn(msg string, args ...any) { Get().Warn(msg, args...) }

func Error(msg string, args ...any) { Get().Error(msg, args...) }

// Fatal logs at error level and exits.
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}

// With returns a child logger carrying args.
func With(args ...any) *slog.Logger {
	return Get().With(args...)
}

// WithError returns a child logger carrying the error text.
func WithError(err error) *slog.Logger {
	if err == nil {
		return Get()
	}
	return Get().With("error", err.Error())
}

// WorkerLog reports the outcome of a background job iteration.
func WorkerLog(worker, operation string, err error) {
	if err != nil {
		Get().Error("worker operation failed", "worker", worker, "operation", operation, "error", err.Error())
		return
	}
	Get().Debug("worker operation completed", "worker", worker, "operation", operation)
}
