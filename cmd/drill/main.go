// Package main runs a flashcard drill in the terminal. Schedules are kept in
// a local SQLite database so progress carries over between runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/lingokids/review-api/internal/config"
	"github.com/lingokids/review-api/internal/domain/srs"
	"github.com/lingokids/review-api/internal/platform/logger"
	"github.com/lingokids/review-api/internal/platform/migrations"
	"github.com/lingokids/review-api/internal/platform/sqlite"
	"github.com/lingokids/review-api/internal/service/review"
	"github.com/lingokids/review-api/internal/session"
)

const defaultLogLevel = "warn"

// options holds the command line. Zero persistTimeout, negative retries and
// an empty logLevel defer to the config file or the built-in defaults.
type options struct {
	configPath     string
	deckPath       string
	dbPath         string
	learner        string
	maxReviews     int
	singlePass     bool
	persistTimeout time.Duration
	retries        int
	logLevel       string
}

// settings are the effective session, engine and logging settings.
type settings struct {
	persistTimeout time.Duration
	retries        int
	logLevel       string
	srs            config.SRSConfig
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "service config file; its session, srs and log settings apply")
	flag.StringVar(&opts.deckPath, "deck", "", "path to a YAML deck file (required)")
	flag.StringVar(&opts.dbPath, "db", "drill.db", "SQLite file holding schedules")
	flag.StringVar(&opts.learner, "learner", "", "learner UUID (required)")
	flag.IntVar(&opts.maxReviews, "reviews", 0, "stop after this many grades (0 = no limit)")
	flag.BoolVar(&opts.singlePass, "single-pass", false, "stop once every card has been graded")
	flag.DurationVar(&opts.persistTimeout, "persist-timeout", 0, "bound on each schedule write (overrides config)")
	flag.IntVar(&opts.retries, "retries", -1, "retries for a failed schedule write (overrides config)")
	flag.StringVar(&opts.logLevel, "log-level", "", "log level written to stderr (overrides config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintln(os.Stderr, "drill:", err)
		os.Exit(1)
	}
}

// resolveSettings starts from the built-in defaults, applies the config file
// when one is given and then any flags that were set.
func resolveSettings(opts options) (settings, error) {
	s := settings{
		persistTimeout: time.Duration(config.DefaultPersistTimeoutSeconds) * time.Second,
		retries:        config.DefaultPersistRetries,
		logLevel:       defaultLogLevel,
	}

	if opts.configPath != "" {
		cfg, err := config.LoadFile(opts.configPath)
		if err != nil {
			return settings{}, err
		}
		s.persistTimeout = time.Duration(cfg.Session.PersistTimeoutSeconds) * time.Second
		s.retries = cfg.Session.PersistRetries
		s.logLevel = cfg.Server.LogLevel
		s.srs = cfg.SRS
	}

	if opts.persistTimeout > 0 {
		s.persistTimeout = opts.persistTimeout
	}
	if opts.retries >= 0 {
		s.retries = opts.retries
	}
	if opts.logLevel != "" {
		s.logLevel = opts.logLevel
	}
	return s, nil
}

func run(ctx context.Context, opts options) error {
	if opts.deckPath == "" {
		return fmt.Errorf("-deck is required")
	}
	learnerID, err := uuid.Parse(opts.learner)
	if err != nil || learnerID == uuid.Nil {
		return fmt.Errorf("-learner must be a UUID")
	}

	cfg, err := resolveSettings(opts)
	if err != nil {
		return err
	}

	log, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: cfg.logLevel}, os.Stderr)
	if err != nil {
		return err
	}

	deck, err := loadDeckFile(opts.deckPath)
	if err != nil {
		return err
	}

	db, err := sqlite.Open(ctx, opts.dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Up(ctx, db, migrations.DialectSQLite); err != nil {
		return err
	}

	params, err := srs.NewParams(srs.ParamsConfig{
		MinEasinessFactor:     cfg.srs.MinEasinessFactor,
		InitialEasinessFactor: cfg.srs.InitialEasinessFactor,
		MaxInterval:           cfg.srs.MaxIntervalDays,
	})
	if err != nil {
		return err
	}
	engine, err := srs.NewService(srs.WithParams(params))
	if err != nil {
		return err
	}
	schedules := sqlite.NewScheduleStore(db, log)
	reviews := review.NewService(db, schedules, engine, review.WithLogger(log))

	cards, err := reviews.LoadDeck(ctx, learnerID, deck.Items)
	if err != nil {
		return err
	}

	persister := review.NewRetryingPersister(schedules,
		review.WithRetries(cfg.retries),
		review.WithPersisterLogger(log))

	sessionOpts := []session.Option{
		session.WithPersistTimeout(cfg.persistTimeout),
		session.WithLogger(log),
	}
	if opts.singlePass {
		sessionOpts = append(sessionOpts, session.WithSinglePass())
	}
	controller, err := session.New(cards, engine, persister, sessionOpts...)
	if err != nil {
		return err
	}

	title := deck.Title
	if title == "" {
		title = opts.deckPath
	}
	fmt.Printf("%s: %d card(s), %d due now\n", title, len(cards), review.CountDue(cards, srs.SystemClock()))
	log.Debug("drill started",
		slog.String("learner_id", learnerID.String()),
		slog.Int("cards", len(cards)),
		slog.Duration("persist_timeout", cfg.persistTimeout),
		slog.Int("persist_retries", cfg.retries))

	return newDrill(controller, os.Stdin, os.Stdout, opts.maxReviews).run(ctx)
}
