package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"nomadprices/internal/amqp"
	"nomadprices/internal/cli"
	"nomadprices/internal/entries/memory"
	applog "nomadprices/internal/log"
	"nomadprices/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.Level(), applog.ComponentWorker)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the digest worker")
		os.Exit(1)
	}

	logger.Info("Starting price-digest", "schedule", cfg.DigestCron, "queue", cfg.AMQPQueue)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	digest := worker.NewDigestWorker(memory.New(), logger.Slog())

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.DigestCron, func() {
		if err := digest.LogDigest(ctx); err != nil {
			logger.Error("Digest failed", applog.FieldError, err)
		}
	}); err != nil {
		logger.Error("Invalid digest schedule", applog.FieldError, err, "schedule", cfg.DigestCron)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Run(gctx, digest.HandlePriceSubmitted)
	})
	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		// Wait for a running digest to finish.
		<-scheduler.Stop().Done()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Digest worker stopped", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
