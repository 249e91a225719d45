package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"dompet/internal/amqp"
	"dompet/internal/config"
	"dompet/internal/ledger"
	"dompet/internal/storage"
	"dompet/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting dompet-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the digest worker")
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	formatter := ledger.NewFormatter(cfg.CurrencySymbol, cfg.CurrencyGroupSep, cfg.CurrencyDecimalSep, cfg.CurrencyDecimals)
	digester := worker.NewDigestWorker(repo, formatter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// Consume transaction-recorded events and re-digest the affected month.
	g.Go(func() error {
		return amqpClient.ConsumeTransactionRecorded(gctx, func(msg *amqp.TransactionRecordedMessage) error {
			return digester.HandleTransactionRecorded(gctx, msg)
		})
	})

	// Periodic digest of the current month, backstopping any events lost
	// while the broker was down.
	g.Go(func() error {
		return digester.RunPeriodic(gctx, cfg.DigestInterval)
	})

	logger.Info("Worker running", "queue", cfg.AMQPQueue, "digest_interval", cfg.DigestInterval.String())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
