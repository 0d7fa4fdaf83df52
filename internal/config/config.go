// Package config contains the configuration loading for the storefront service.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the service configuration. A non-empty DatabaseURI selects
// the PostgreSQL backend; otherwise the document file at DataFile is used.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseURI string `env:"DATABASE_URI"`
	DataFile    string `env:"DATA_FILE"`
}

// Parse reads the configuration from command-line flags and environment
// variables, environment winning. A .env file is loaded first when present.
func Parse() (*Config, error) {
	// Optional; absence of a .env file is the normal case.
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envDataFile := cfg.DataFile

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI (empty selects the document-file backend)")
	flag.StringVar(&cfg.DataFile, "f", "store.json", "path of the document file")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envDataFile != "" {
		cfg.DataFile = envDataFile
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.DataFile == "" {
		cfg.DataFile = "store.json"
	}

	return cfg, nil
}
