package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"envelopes/internal/config"
	"envelopes/internal/services"
	gsheet "envelopes/internal/sheets/google"
	"envelopes/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	monthFlag := flag.String("month", "", "month to report in YYYY-MM form (default: previous month)")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	anchor := time.Now().AddDate(0, -1, 0)
	if *monthFlag != "" {
		parsed, err := time.Parse("2006-01", *monthFlag)
		if err != nil {
			logger.Error("Invalid -month value, expected YYYY-MM", "value", *monthFlag)
			os.Exit(1)
		}
		anchor = parsed
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()

	report, err := services.NewReportService(repo).BuildMonthlyReport(ctx, anchor)
	if err != nil {
		logger.Error("Failed to build monthly report", "error", err)
		os.Exit(1)
	}

	printReport(report)

	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
		return
	}

	client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleReportSheet)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	rowRef, err := client.AppendMonthlyReport(ctx, report)
	if err != nil {
		logger.Error("Failed to export report", "error", err)
		os.Exit(1)
	}
	logger.Info("Report exported", "range", rowRef)
}

func printReport(r *services.MonthlyReport) {
	fmt.Printf("Report for %s\n", r.From.Format("January 2006"))
	fmt.Printf("  Income:       %s\n", r.Income.StringFixed(2))
	fmt.Printf("  Expenses:     %s\n", r.Expenses.StringFixed(2))
	fmt.Printf("  Savings:      %s\n", r.Savings.StringFixed(2))
	fmt.Printf("  Savings rate: %s%%\n", r.SavingsRate.StringFixed(2))
	for _, u := range r.PerUser {
		fmt.Printf("  %-12s  %s\n", u.User.Username, u.Expenses.StringFixed(2))
	}
}
