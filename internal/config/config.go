package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// EnvFileEnv names the environment variable pointing at an optional .env file.
	EnvFileEnv = "ENV_FILE"

	// DefaultEnvFile is loaded when EnvFileEnv is not set.
	DefaultEnvFile = ".env"
)

// New reads configuration from environment variables (optionally loading a .env file first)
// and unmarshals them into a struct of type T. Returns the populated configuration struct or an error.
func New[T any]() (T, error) {
	var cfg T
	if err := loadEnvFile(); err != nil {
		return cfg, err
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// loadEnvFile applies the .env file without overriding variables that are
// already set. A missing file is not an error.
func loadEnvFile() error {
	path := os.Getenv(EnvFileEnv)
	if path == "" {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}

	return nil
}
