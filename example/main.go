package main

import (
	"context"
	"fmt"
	"log/slog"

	"gitlab.com/tozd/go/errors"

	"github.com/colonnade/colonnade"
)

func main() {
	fmt.Println("=== colonnade demonstration ===")
	fmt.Println()

	logger, err := colonnade.Setup(
		colonnade.WithLevel(colonnade.LevelTrace),
		colonnade.WithName("demo"),
	)
	if err != nil {
		panic(err)
	}

	fmt.Println("1. Levels:")
	logger.Log(context.Background(), colonnade.LevelTrace, "This is a trace message")
	logger.Debug("This is a debug message")
	logger.Info("This is an info message", "component", "demo")
	logger.Log(context.Background(), colonnade.LevelNotice, "This is a notice message")
	logger.Warn("This is a warning message", "issue", "example")
	logger.Error("This is an error message")

	fmt.Println()
	fmt.Println("2. Multi-line wrapping:")
	logger.Info("A very long message that will have to be split over multiple " +
		"lines, demonstrating the column-aligned multiline printout with " +
		"separators repeated or blanked according to the format template.")

	fmt.Println()
	fmt.Println("3. Headers:")
	colonnade.LogHeader(logger, "Starting ingest run")

	fmt.Println()
	fmt.Println("4. Errors with stack traces:")
	dbErr := errors.WithDetails(
		errors.New("database connection failed"),
		"host", "localhost",
		"port", 5432,
	)
	logger.Error("Connecting failed", "error", dbErr)

	fmt.Println()
	fmt.Println("5. Preset styles:")
	for _, preset := range colonnade.StylePresets() {
		style, serr := colonnade.StylePreset(preset)
		if serr != nil {
			continue
		}
		style.FitToTerminal = false
		presetLogger, serr2 := colonnade.Setup(
			colonnade.WithStyle(style),
			colonnade.WithName(preset),
			colonnade.WithForceColumns(),
		)
		if serr2 != nil {
			fmt.Println(preset, "->", serr2)
			continue
		}
		presetLogger.Info("Sample message for the " + preset + " style")
	}

	slog.Info("colonnade is now the default slog logger")
}
