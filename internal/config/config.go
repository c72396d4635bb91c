// Package config provides centralized configuration for the converter CLI
// and the HTTP conversion service. Settings come from environment variables
// with defaults and are validated on startup so misconfiguration fails fast.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Convert  ConvertConfig
	Upload   UploadConfig
	Postgres PostgresConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request (default: 60s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"60s"`

	// WriteTimeout covers conversion plus streaming the database back (default: 10m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"10m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// APIKeys is a comma-separated list of keys accepted in X-API-Key.
	// Empty leaves the API open.
	APIKeys []string `env:"API_KEYS"`
}

// ConvertConfig holds conversion settings shared by the CLI and the server.
type ConvertConfig struct {
	// BatchSize is the number of records inserted per batch (default: 500)
	BatchSize int `env:"CONVERT_BATCH_SIZE" default:"500"`

	// Timeout bounds a single conversion; 0 disables it (default: 0s)
	Timeout time.Duration `env:"CONVERT_TIMEOUT" default:"0s"`
}

// UploadConfig holds settings for conversions submitted over HTTP.
type UploadConfig struct {
	// MaxFileSize is the maximum accepted upload in bytes (default: 100MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"104857600"`

	// MaxConcurrent is the maximum number of parallel conversions (default: 4)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for a conversion slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// WorkDir holds temporary databases; empty means the OS temp dir
	WorkDir string `env:"UPLOAD_WORK_DIR"`

	// StaleAge is when a leftover run database in WorkDir gets swept (default: 1h)
	StaleAge time.Duration `env:"UPLOAD_STALE_AGE" default:"1h"`

	// SweepInterval is how often WorkDir is swept (default: 10m)
	SweepInterval time.Duration `env:"UPLOAD_SWEEP_INTERVAL" default:"10m"`
}

// PostgresConfig sizes the pool used when the output is a PostgreSQL URL.
type PostgresConfig struct {
	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"PG_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"PG_MIN_CONNS" default:"0"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
