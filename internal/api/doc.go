// Package api exposes the review service over HTTP. Handlers translate
// requests into review.Service calls and map their errors to sanitized JSON
// responses.
package api
