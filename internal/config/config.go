package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds everything the process needs, read from an optional YAML file
// with environment variable overrides.
type Config struct {
	Addr     string `yaml:"addr" env:"DROPQUEST_ADDR" env-default:":8080"`
	DBPath   string `yaml:"db_path" env:"DROPQUEST_DB" env-default:"dropquest.sqlite3"`
	Origin   string `yaml:"origin" env:"DROPQUEST_ORIGIN" env-default:"http://localhost:8080"`
	Quota    int64  `yaml:"quota_bytes" env:"DROPQUEST_QUOTA_BYTES" env-default:"4194304"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads the config file at path when it exists, then applies
// environment overrides. A missing file is not an error; the environment
// and defaults carry the full configuration.
func Load(path string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading config from environment: %w", err)
	}
	return &cfg, nil
}
