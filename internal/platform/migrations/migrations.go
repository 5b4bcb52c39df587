package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedded embed.FS

// Dialect names a supported database.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// ErrUnknownDialect is returned for a dialect with no embedded migrations.
var ErrUnknownDialect = errors.New("unknown migration dialect")

// goose keeps its dialect, filesystem and logger in package state.
var gooseMu sync.Mutex

// dir returns the embedded directory holding the dialect's migrations.
func (d Dialect) dir() (string, error) {
	switch d {
	case DialectPostgres:
		return "postgres", nil
	case DialectSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, string(d))
	}
}

// DialectForDriver maps a configured database driver name to its dialect.
func DialectForDriver(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("%w: driver %q", ErrUnknownDialect, driver)
	}
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, dialect Dialect) error {
	return run(ctx, db, dialect, "up", func(dir string) error {
		return goose.UpContext(ctx, db, dir)
	})
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB, dialect Dialect) error {
	return run(ctx, db, dialect, "down", func(dir string) error {
		return goose.DownContext(ctx, db, dir)
	})
}

// Status logs the applied state of every migration.
func Status(ctx context.Context, db *sql.DB, dialect Dialect) error {
	return run(ctx, db, dialect, "status", func(dir string) error {
		return goose.StatusContext(ctx, db, dir)
	})
}

// Version returns the current schema version.
func Version(ctx context.Context, db *sql.DB, dialect Dialect) (int64, error) {
	var version int64
	err := run(ctx, db, dialect, "version", func(string) error {
		var err error
		version, err = goose.GetDBVersionContext(ctx, db)
		return err
	})
	return version, err
}

func run(ctx context.Context, db *sql.DB, dialect Dialect, command string, fn func(dir string) error) error {
	dir, err := dialect.dir()
	if err != nil {
		return err
	}

	log := slog.Default().With(
		slog.String("component", "migrations"),
		slog.String("command", command),
		slog.String("dialect", string(dialect)),
	)

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedded)
	goose.SetLogger(&slogGooseLogger{logger: log})
	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	start := time.Now()
	if err := fn(dir); err != nil {
		log.ErrorContext(ctx, "migration command failed", slog.String("error", err.Error()))
		return fmt.Errorf("goose %s: %w", command, err)
	}

	log.DebugContext(ctx, "migration command completed",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf forwards goose progress messages at info level.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level. It does not exit; the goose call returns the
// error to the caller.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
