package logger

import (
	"log/slog"
	"os"
)

// Log is usable before Init so library code and tests never trip over a nil
// logger; Init just reconfigures it for production output.
var Log = slog.Default()

func Init() {
	// JSON handler for production-ready logging
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	Log = slog.New(handler)
}
