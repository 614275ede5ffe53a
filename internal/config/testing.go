package config

import (
	"fmt"

	"github.com/rezkam/todos/internal/env"
)

// TestConfig holds the optional backends integration tests run against.
// Tests skip a backend whose setting is empty.
type TestConfig struct {
	PostgresDSN string `env:"TEST_POSTGRES_DSN"`
	MongoURI    string `env:"TEST_MONGO_URI"`
	GCSBucket   string `env:"TEST_GCS_BUCKET"`
}

// LoadTestConfig loads test configuration from environment.
func LoadTestConfig() (*TestConfig, error) {
	cfg := &TestConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load test config: %w", err)
	}

	return cfg, nil
}
