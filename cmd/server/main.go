// Package main implements the entry point for the deal memo API server,
// which tracks venture deals and generates investment memos section by
// section with an LLM.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/cdandre/dealmemo-api/internal/config"
	"github.com/cdandre/dealmemo-api/internal/platform/logger"
)

func main() {
	// Migration flags. When -migrate is set the process runs the migration
	// command and exits instead of serving.
	migrateCmd := flag.String("migrate", "", "migration command: up, down, status, version, create")
	migrationName := flag.String("migration-name", "", "name for a new migration (with -migrate create)")
	flag.Parse()

	if err := run(*migrateCmd, *migrationName); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run(migrateCmd, migrationName string) error {
	// A missing .env file is fine; environment variables take over.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"worker_mode", cfg.Worker.Mode)

	if migrateCmd != "" {
		return runMigrations(cfg, migrateCmd, migrationName)
	}

	ctx := context.Background()

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		// The application owns the connection once constructed; on a failed
		// construction close it here.
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("error closing database connection", "error", closeErr)
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
