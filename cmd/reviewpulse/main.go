package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ReviewPulse/internal/app"
	"ReviewPulse/internal/config"
	"ReviewPulse/internal/logging"
)

func main() {
	once := flag.Bool("once", false, "process all subscriptions immediately and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		err = application.RunOnce(ctx)
	} else {
		err = application.Serve(ctx)
	}
	if err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
