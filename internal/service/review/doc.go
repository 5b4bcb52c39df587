// Package review coordinates the review engine with the schedule store.
//
// Service applies grades and postponements inside a transaction and loads
// decks of cards with their stored schedules for a review session.
// RetryingPersister is the session.Persister used by interactive sessions.
package review
