package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	instance *slog.Logger
	once     sync.Once
)

// Init configures the process-wide logger. level is one of debug/info/warn/error;
// anything else falls back to info.
func Init(level string) {
	once.Do(func() {
		var lvl slog.Level
		switch strings.ToLower(level) {
		case "debug":
			lvl = slog.LevelDebug
		case "warn":
			lvl = slog.LevelWarn
		case "error":
			lvl = slog.LevelError
		default:
			lvl = slog.LevelInfo
		}

		instance = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	})
}

func get() *slog.Logger {
	if instance == nil {
		Init("info")
	}
	return instance
}

func Debug(msg string, args ...any) {
	get().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	get().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	get().Warn(msg, args...)
}

// Error accepts either key/value pairs or a bare error as the first argument.
func Error(msg string, args ...any) {
	if len(args)%2 == 1 {
		if _, ok := args[0].(error); ok {
			args = append([]any{"error"}, args...)
		}
	}
	get().Error(msg, args...)
}
