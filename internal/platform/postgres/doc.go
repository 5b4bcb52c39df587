// Package postgres provides the PostgreSQL implementation of the schedule
// store defined in internal/store. It handles query execution, mapping
// between domain.ScheduleState and the schedule_states table, and
// translation of driver errors into store errors.
package postgres
