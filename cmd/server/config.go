package main

import (
	"fmt"
	"log/slog"

	"github.com/lingokids/review-api/internal/config"
)

// loadAppConfig loads configuration from path (or the default locations) and
// the environment.
func loadAppConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver)

	return cfg, nil
}
