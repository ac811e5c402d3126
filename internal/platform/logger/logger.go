package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Handlers and services log
// key/value pairs against it; request-scoped fields come from middleware.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
