package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	SRS      SRSConfig      `mapstructure:"srs"      validate:"required"`
	Session  SessionConfig  `mapstructure:"session"  validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig selects the schedule store backend.
// For postgres URL is a connection string; for sqlite it is a file path.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL    string `mapstructure:"url"    validate:"required"`
}

// AuthConfig contains the settings used to validate bearer tokens.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// SRSConfig tunes the review engine. Zero values keep the engine defaults.
type SRSConfig struct {
	MinEasinessFactor     float64 `mapstructure:"min_easiness_factor"     validate:"omitempty,gte=1.3"`
	InitialEasinessFactor float64 `mapstructure:"initial_easiness_factor" validate:"omitempty,gte=1.3"`
	MaxIntervalDays       int     `mapstructure:"max_interval_days"       validate:"omitempty,gt=0"`
}

// SessionConfig controls how review sessions write schedules.
type SessionConfig struct {
	PersistTimeoutSeconds int `mapstructure:"persist_timeout_seconds" validate:"required,gt=0"`
	PersistRetries        int `mapstructure:"persist_retries"         validate:"gte=0,lte=10"`
}
