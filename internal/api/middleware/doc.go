// Package middleware provides the HTTP middleware for request tracing and
// bearer token authentication.
package middleware
