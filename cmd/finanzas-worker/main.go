package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"finanzas/internal/amqp"
	"finanzas/internal/backend"
	"finanzas/internal/cli"
	"finanzas/internal/config"
	"finanzas/internal/log"
	"finanzas/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.SetupLogger(nil, log.ComponentWorker).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting finanzas-worker", log.FieldOperation, log.OpStartup, "backend", cfg.DataBackend)

	ctx, cancel := cli.SignalContext(logger)
	err = run(ctx, logger, cfg)
	cancel()
	if err != nil {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete", log.FieldOperation, log.OpShutdown)
}

// run owns every resource the worker opens so deferred closes happen before
// main decides the exit code.
func run(ctx context.Context, logger *log.Logger, cfg *config.Config) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid backend configuration: %w", err)
	}
	factory := backend.NewFactory(logger)

	res, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("initialize backend: %w", err)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("Cleanup failed", log.FieldError, err)
		}
	}()

	mirror, err := factory.CreateMirror(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("initialize mirror: %w", err)
	}

	syncWorker := worker.NewSyncWorker(res.Store, mirror, cfg.SyncBatchSize, logger)

	// On startup, rewrite every row so events missed while down are healed
	if n, err := syncWorker.ResyncAll(ctx); err != nil {
		logger.Error("Startup resync failed", log.FieldError, err)
	} else {
		logger.Info("Startup resync complete", "rows", n)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return fmt.Errorf("initialize AMQP client: %w", err)
		}
		defer consumer.Close()

		g.Go(func() error {
			return consumer.ConsumeLedgerEvents(gctx, syncWorker.HandleLedgerEvent)
		})
	} else {
		logger.Info("AMQP disabled, relying on periodic resync only")
	}

	g.Go(func() error {
		return syncWorker.RunPeriodicResync(gctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
