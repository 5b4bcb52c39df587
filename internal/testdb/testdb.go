package testdb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/lingokids/review-api/internal/platform/migrations"
	"github.com/lingokids/review-api/internal/platform/sqlite"
	"github.com/lingokids/review-api/internal/redact"
	"github.com/stretchr/testify/require"
)

// Environment variables checked by DatabaseURL, in order.
const (
	EnvDatabaseURL     = "DATABASE_URL"
	EnvTestDatabaseURL = "REVIEW_TEST_DATABASE_URL"
)

const connectTimeout = 5 * time.Second

// DatabaseURL returns the PostgreSQL URL for integration tests, or "" if none
// is configured.
func DatabaseURL() string {
	for _, name := range []string{EnvDatabaseURL, EnvTestDatabaseURL} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// OpenSQLite creates a migrated SQLite database in the test's temp dir. It is
// closed when the test ends.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "review.db"))
	require.NoError(t, err, "open sqlite test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(ctx, db, migrations.DialectSQLite), "migrate sqlite test database")
	return db
}

// OpenPostgres connects to DatabaseURL and applies migrations. The test is
// skipped when no URL is configured.
func OpenPostgres(t testing.TB) *sql.DB {
	t.Helper()

	dbURL := DatabaseURL()
	if dbURL == "" {
		t.Skipf("%s not set, skipping PostgreSQL test", EnvDatabaseURL)
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "open postgres test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("postgres test database unreachable at %s: %s", redact.String(dbURL), redact.Error(err))
	}

	require.NoError(t, migrations.Up(context.Background(), db, migrations.DialectPostgres),
		"migrate postgres test database")
	return db
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t testing.TB, db *sql.DB, fn func(tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "begin test transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Errorf("rollback test transaction: %v", err)
		}
	}()

	fn(tx)
}
