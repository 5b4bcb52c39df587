// Package store defines interfaces for schedule persistence.
// These interfaces keep the review engine and review service independent of
// the database behind them; PostgreSQL and SQLite implementations live under
// internal/platform.
package store
