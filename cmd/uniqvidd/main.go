// Command uniqvidd runs the variant-generation daemon: HTTP intake, the
// bounded job pool, and delivery of rendered copies.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"uniqvid/internal/config"
	"uniqvid/internal/daemon"
	"uniqvid/internal/delivery"
	"uniqvid/internal/deps"
	"uniqvid/internal/intake"
	"uniqvid/internal/jobs"
	"uniqvid/internal/logging"
	"uniqvid/internal/notifications"
	"uniqvid/internal/variant"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		if !status.Available {
			logger.Warn("external binary unavailable",
				logging.String("name", status.Name),
				logging.String("detail", status.Detail))
		}
	}

	store, err := jobs.Open(cfg.LedgerPath())
	if err != nil {
		log.Fatalf("open job ledger: %v", err)
	}
	defer store.Close()
	if pruned, err := store.Prune(ctx); err != nil {
		logger.Warn("prune stale ledger rows", logging.Error(err))
	} else if pruned > 0 {
		logger.Info("stale ledger rows pruned", logging.Int64("count", pruned))
	}

	generator, err := variant.NewService(cfg, logger)
	if err != nil {
		log.Fatalf("init variant service: %v", err)
	}
	deliverer, err := delivery.NewDirDeliverer(cfg.Paths.ResultsDir, logger)
	if err != nil {
		log.Fatalf("init deliverer: %v", err)
	}
	notifier := notifications.NewService(cfg, logger)

	controller, err := jobs.NewController(cfg, store, generator, deliverer, notifier, logger)
	if err != nil {
		log.Fatalf("init job controller: %v", err)
	}
	uploads, err := intake.NewStore(cfg, logger)
	if err != nil {
		log.Fatalf("init upload store: %v", err)
	}

	d, err := daemon.New(cfg, controller, uploads, logger)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	if err := d.Start(ctx); err != nil {
		log.Fatalf("start daemon: %v", err)
	}

	<-ctx.Done()
	logger.Info("uniqvidd shutting down")
	d.Stop()
}
