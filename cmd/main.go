package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/acx/internal/shared"
)

// exitInterrupted is the conventional status for a run stopped by SIGINT.
const exitInterrupted = 130

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})
	app := rootCommand(runner)

	err := app.Run(ctx, os.Args)
	stop()

	switch {
	case err == nil:
		return
	case errors.Is(err, shared.ErrInterrupted):
		logger.Warn(err.Error())
		os.Exit(exitInterrupted)
	case errors.Is(err, shared.ErrRecordsFailed):
		logger.Error(err.Error())
		os.Exit(1)
	default:
		logger.Fatalf("application error: %v", err)
	}
}
