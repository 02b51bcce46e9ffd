package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"ecotrace/internal/config"
	"ecotrace/internal/logger"
	"ecotrace/internal/tracker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found, relying on system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	appLog := logger.New(cfg)
	appLog.Info("ecotrace: starting...", "project", cfg.ProjectName, "ledger", cfg.FileName, "period", cfg.MeasurePeriod)

	runtimeCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runtimeCtx)

	g.Go(func() error {
		return tracker.Track(gCtx, cfg, appLog, func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLog.Error("tracking failed", "error", err)
	}

	appLog.Info("ecotrace stopped gracefully.")
}
