// Package session walks a learner through a finite deck of flashcards in one
// sitting. The Controller is an explicit state machine (front shown, back
// shown, advancing, complete) that delegates every schedule change to the
// review engine and hands each result to a Persister.
//
// A Controller holds mutable per-sitting state and is not safe for concurrent
// use.
package session
