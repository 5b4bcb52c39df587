package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lingokids/review-api/internal/platform/postgres"
	"github.com/lingokids/review-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		SchemaName:     "public",
		TableName:      "schedule_states",
		ColumnName:     "easiness_factor",
		ConstraintName: "schedule_states_easiness_factor_check",
	}
}

// MockResult implements sql.Result for testing
type MockResult struct {
	rowsAffected int64
	err          error
}

func (m MockResult) LastInsertId() (int64, error) {
	return 0, m.err
}

func (m MockResult) RowsAffected() (int64, error) {
	return m.rowsAffected, m.err
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected error
		contains string
	}{
		{name: "no rows", err: sql.ErrNoRows, expected: store.ErrNotFound},
		{name: "unique violation", err: newPgError("23505"), expected: store.ErrDuplicate},
		{
			name:     "check violation",
			err:      newPgError("23514"),
			expected: store.ErrInvalidEntity,
			contains: "schedule_states_easiness_factor_check",
		},
		{
			name:     "not null violation",
			err:      newPgError("23502"),
			expected: store.ErrInvalidEntity,
			contains: "easiness_factor",
		},
		{
			name:     "wrapped check violation",
			err:      fmt.Errorf("exec: %w", newPgError("23514")),
			expected: store.ErrInvalidEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := postgres.MapError(tt.err)
			assert.ErrorIs(t, mapped, tt.expected)
			if tt.contains != "" {
				assert.Contains(t, mapped.Error(), tt.contains)
			}
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, postgres.MapError(nil))
	})

	t.Run("unmapped errors pass through", func(t *testing.T) {
		plain := errors.New("connection refused")
		assert.Same(t, plain, postgres.MapError(plain))

		other := newPgError("40001")
		assert.Equal(t, error(other), postgres.MapError(other))
	})
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsUniqueViolation(newPgError("23505")))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23514")))
	assert.False(t, postgres.IsUniqueViolation(nil))

	assert.True(t, postgres.IsCheckConstraintViolation(fmt.Errorf("wrap: %w", newPgError("23514"))))
	assert.False(t, postgres.IsCheckConstraintViolation(errors.New("generic error")))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	require.NoError(t, postgres.CheckRowsAffected(MockResult{rowsAffected: 1}, "schedule"))

	err := postgres.CheckRowsAffected(MockResult{rowsAffected: 0}, "schedule")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "schedule not found")

	assert.Equal(t, store.ErrNotFound, postgres.CheckRowsAffected(MockResult{}, ""))

	resultErr := errors.New("driver does not support RowsAffected")
	assert.ErrorIs(t, postgres.CheckRowsAffected(MockResult{err: resultErr}, "schedule"), resultErr)

	assert.Error(t, postgres.CheckRowsAffected(nil, "schedule"))
}
