// Package sqlite provides the embedded SQLite implementation of the schedule
// store, used by the drill CLI and by service tests. It runs on the pure-Go
// modernc.org/sqlite driver, so no cgo toolchain is needed.
//
// Times are stored as UTC unix milliseconds.
package sqlite
