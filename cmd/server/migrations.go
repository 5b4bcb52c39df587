package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lingokids/review-api/internal/config"
	"github.com/lingokids/review-api/internal/platform/migrations"
)

// handleMigrations runs one migration command against db.
func handleMigrations(ctx context.Context, cfg *config.Config, db *sql.DB, command string, logger *slog.Logger) error {
	dialect, err := migrations.DialectForDriver(cfg.Database.Driver)
	if err != nil {
		return err
	}

	logger.Info("Executing migrations",
		slog.String("command", command),
		slog.String("dialect", string(dialect)))

	switch command {
	case "up":
		err = migrations.Up(ctx, db, dialect)
	case "down":
		err = migrations.Down(ctx, db, dialect)
	case "status":
		err = migrations.Status(ctx, db, dialect)
	case "version":
		var version int64
		version, err = migrations.Version(ctx, db, dialect)
		if err == nil {
			logger.Info("Current schema version", slog.Int64("version", version))
		}
	default:
		return fmt.Errorf("unknown migration command %q: want up, down, status or version", command)
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}
