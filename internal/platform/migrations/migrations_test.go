package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestUpDown_SQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openSQLite(t)

	require.NoError(t, Up(ctx, db, DialectSQLite))
	assert.True(t, tableExists(t, db, "schedule_states"))

	version, err := Version(ctx, db, DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Applying again is a no-op.
	require.NoError(t, Up(ctx, db, DialectSQLite))
	require.NoError(t, Status(ctx, db, DialectSQLite))

	require.NoError(t, Down(ctx, db, DialectSQLite))
	assert.False(t, tableExists(t, db, "schedule_states"))
}

func TestUnknownDialect(t *testing.T) {
	t.Parallel()
	err := Up(context.Background(), nil, Dialect("oracle"))
	assert.ErrorIs(t, err, ErrUnknownDialect)
}

func TestDialectForDriver(t *testing.T) {
	t.Parallel()

	tests := []struct {
		driver string
		want   Dialect
		ok     bool
	}{
		{"postgres", DialectPostgres, true},
		{"pgx", DialectPostgres, true},
		{"sqlite", DialectSQLite, true},
		{"sqlite3", DialectSQLite, true},
		{"mysql", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			got, err := DialectForDriver(tt.driver)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrUnknownDialect)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()
	for _, dir := range []string{"postgres", "sqlite"} {
		entries, err := embedded.ReadDir(dir)
		require.NoError(t, err)
		assert.NotEmpty(t, entries, dir)
	}
}
