package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/wes/paca/internal/config"
	"github.com/wes/paca/internal/database"
	"github.com/wes/paca/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("", "")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := cfg.NewLogger()

	db, err := database.NewDB(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	timesheetService := service.NewTimesheetService(db, cfg, service.WithLogger(log))

	if _, err := timesheetService.CleanupCompletedTasks(ctx, cfg.TaskRetention); err != nil {
		log.Warn("failed to clean up completed tasks", slog.Any("error", err))
	}

	rootCmd := newRootCmd(timesheetService, cfg)
	return rootCmd.ExecuteContext(ctx)
}
