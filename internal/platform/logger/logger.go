package logger

import (
	"log/slog"
	"os"
)

// New returns the structured logger every component receives. Text output on
// stdout keeps local runs readable; swap the handler for JSON when shipping
// logs somewhere.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
