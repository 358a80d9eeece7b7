package logger

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

// Init configures the process logger. Production writes JSON at info level,
// every other environment writes text at debug level.
func Init(env string) {
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	l := slog.New(handler)
	current.Store(l)
	slog.SetDefault(l)
}

// SetHandler swaps the underlying handler, used by tests to capture output.
func SetHandler(h slog.Handler) {
	current.Store(slog.New(h))
}

func L() *slog.Logger {
	return current.Load()
}

func Debug(msg string, args ...any) {
	log(slog.LevelDebug, msg, args...)
}

func Info(msg string, args ...any) {
	log(slog.LevelInfo, msg, args...)
}

func Warn(msg string, args ...any) {
	log(slog.LevelWarn, msg, args...)
}

func Error(msg string, args ...any) {
	log(slog.LevelError, msg, args...)
}

// Fatal logs at error level and exits.
func Fatal(msg string, args ...any) {
	log(slog.LevelError, msg, args...)
	os.Exit(1)
}

func log(level slog.Level, msg string, args ...any) {
	current.Load().Log(context.Background(), level, msg, normalize(args)...)
}

// normalize lets callers pass a bare error or string after the message,
// as in logger.Error("failed to create order", err).
func normalize(args []any) []any {
	if len(args) == 0 {
		return args
	}

	out := make([]any, 0, len(args)+1)
	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case error:
			out = append(out, slog.String("error", v.Error()))
		case slog.Attr:
			out = append(out, v)
		case string:
			if i+1 < len(args) {
				out = append(out, v, args[i+1])
				i++
			} else {
				out = append(out, slog.String("detail", v))
			}
		default:
			out = append(out, slog.Any("detail", v))
		}
	}

	return out
}
