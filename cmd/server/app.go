package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lingokids/review-api/internal/config"
	"github.com/lingokids/review-api/internal/domain/srs"
	"github.com/lingokids/review-api/internal/platform/postgres"
	"github.com/lingokids/review-api/internal/platform/sqlite"
	"github.com/lingokids/review-api/internal/service/auth"
	"github.com/lingokids/review-api/internal/service/review"
	"github.com/lingokids/review-api/internal/store"
)

// application holds the server's shared dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	scheduleStore store.ScheduleStore

	jwtService    auth.JWTService
	srsService    srs.Service
	reviewService review.Service
}

// newApplication wires stores and services for cfg on top of an open db. A nil
// clock means the system clock.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB, clock srs.Clock) (*application, error) {
	if clock == nil {
		clock = srs.SystemClock
	}

	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	params, err := srs.NewParams(srs.ParamsConfig{
		MinEasinessFactor:     cfg.SRS.MinEasinessFactor,
		InitialEasinessFactor: cfg.SRS.InitialEasinessFactor,
		MaxInterval:           cfg.SRS.MaxIntervalDays,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SRS parameters: %w", err)
	}
	app.srsService, err = srs.NewService(srs.WithParams(params), srs.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SRS service: %w", err)
	}

	switch cfg.Database.Driver {
	case "sqlite":
		app.scheduleStore = sqlite.NewScheduleStore(db, logger)
	default:
		app.scheduleStore = postgres.NewPostgresScheduleStore(db, logger)
	}

	app.reviewService = review.NewService(db, app.scheduleStore, app.srsService,
		review.WithClock(clock),
		review.WithLogger(logger))

	logger.Info("Application initialized",
		slog.String("database_driver", cfg.Database.Driver),
		slog.Float64("initial_easiness_factor", params.InitialEasinessFactor))
	return app, nil
}
