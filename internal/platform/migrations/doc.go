// Package migrations embeds the schedule store schema for each supported
// database and applies it with goose.
package migrations
