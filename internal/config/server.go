// Package config defines the typed configuration of the todos binaries.
package config

import (
	"fmt"
	"time"

	"github.com/rezkam/todos/internal/env"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	Storage         StorageConfig
	HTTP            HTTPConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"TODOS_SHUTDOWN_TIMEOUT" default:"10s"`
}

// HTTPConfig holds HTTP server configuration.
// Zero values are replaced by the server's defaults.
type HTTPConfig struct {
	Host              string        `env:"TODOS_HTTP_HOST"`
	Port              string        `env:"TODOS_HTTP_PORT" default:"4567"`
	ReadTimeout       time.Duration `env:"TODOS_HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `env:"TODOS_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `env:"TODOS_HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `env:"TODOS_HTTP_READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int           `env:"TODOS_HTTP_MAX_HEADER_BYTES"`
	MaxBodyBytes      int64         `env:"TODOS_HTTP_MAX_BODY_BYTES"`
}

// ObservabilityConfig holds observability configuration.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"TODOS_OTEL_ENABLED"`
	ServiceName string `env:"OTEL_SERVICE_NAME" default:"todos"`
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
