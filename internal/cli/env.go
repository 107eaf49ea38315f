package cli

import (
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvConfig holds process defaults read from FPRECON_* variables and an
// optional .env file in the working directory.
type EnvConfig struct {
	Workers     int    `env:"FPRECON_WORKERS"`
	Profile     string `env:"FPRECON_PROFILE"`
	ProfileName string `env:"FPRECON_PROFILE_NAME"`
	Database    string `env:"FPRECON_DB"`
	LogLevel    string `env:"FPRECON_LOG_LEVEL" envDefault:"info"`
}

var dotenvLoaded sync.Once

// LoadEnvConfig parses the environment into an EnvConfig.
func LoadEnvConfig() (EnvConfig, error) {
	dotenvLoaded.Do(func() {
		// A missing .env file is fine.
		_ = godotenv.Load()
	})

	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Workers < 0 {
		return EnvConfig{}, fmt.Errorf("FPRECON_WORKERS must not be negative, got %d", cfg.Workers)
	}
	return cfg, nil
}

// orEnv returns flag unless it is empty.
func orEnv(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
