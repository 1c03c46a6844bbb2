package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/derap/log"
)

func Example_basic() {
	logger := log.Make(os.Stderr)
	logger.Info("decoded", slog.String("file", "config.bin"))
}

func Example_configuration() {
	logger := log.Make(os.Stderr,
		log.WithLevel(log.LevelDebug),
		log.WithTimeLayout("RFC3339Nano"),
		log.WithCaller(true))

	logger.Debug("debug message with caller info")
}

func Example_textFormat() {
	logger := log.Make(os.Stderr, log.WithFormat(log.FormatText))
	logger.Info("text format message", slog.String("addon", "main"))
}

func Example_withAttributes() {
	logger := log.Make(os.Stderr).With(slog.String("addon", "main"))

	logger.Info("checking classes")
	logger.Debug("class details", slog.String("class", "rifle"))
}

func Example_withContext() {
	logger := log.Make(os.Stderr)

	logger.InfoContext(context.Background(), "processing with context")
}

func Example_zero() {
	var logger log.Logger

	// Discarded.
	logger.Error("nobody hears this")
}
