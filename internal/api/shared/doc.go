// Package shared holds request context keys and the JSON request and
// response helpers used by handlers and middleware.
package shared
