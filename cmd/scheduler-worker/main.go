package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"envelopes/internal/amqp"
	"envelopes/internal/config"
	"envelopes/internal/notify"
	"envelopes/internal/scheduler"
	"envelopes/internal/services"
	"envelopes/internal/storage"
	"envelopes/internal/workcal"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting scheduler-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Notifications go through AMQP when a broker is reachable, otherwise
	// they land in the log.
	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, notifications go to the log", "error", err)
		} else {
			defer amqpClient.Close()
			notifier = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - notifications go to the log")
	}

	cal, err := workcal.ForCountry(cfg.HolidayCountry)
	if err != nil {
		logger.Warn("Unknown holiday country, weekends only", "country", cfg.HolidayCountry)
		cal = workcal.WeekendOnly()
	}

	balances := services.NewBalanceService(repo)
	engine := scheduler.NewEngine(repo, balances, notifier, cal)
	defer engine.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Scheduler configured",
		"reload_interval", cfg.ReloadInterval,
		"holiday_calendar", cal.Name(),
		"sqlite_db", cfg.SQLiteDBPath)

	if err := engine.Reload(ctx); err != nil {
		logger.Error("Initial scheduler load failed", "error", err)
		os.Exit(1)
	}

	// Periodic reload picks up task changes made by other processes.
	ticker := time.NewTicker(cfg.ReloadInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := engine.Reload(ctx); err != nil {
					logger.Error("Periodic scheduler reload failed", "error", err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())
	logger.Info("scheduler-worker stopped")
}
