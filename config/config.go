package config

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:3000/api"`
	Timeout time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"10s"`
}

type Config struct {
	LogLevel    string    `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	API         APIConfig `yaml:"api"`
	SessionFile string    `yaml:"session_file" env:"SESSION_FILE"`
}

func MustLoad(configPath string) Config {
	var cfg Config

	// empty path - env only
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read env: %s", err)
		}
		return withDefaults(cfg)
	}

	// try the file, fall back to env when it is missing
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if errors.As(err, &pe) {
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				log.Fatalf("cannot read env: %s", err)
			}
			return withDefaults(cfg)
		}
		log.Fatalf("cannot read config %q: %s", configPath, err)
	}

	return withDefaults(cfg)
}

func withDefaults(cfg Config) Config {
	if cfg.SessionFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("cannot resolve home dir: %s", err)
		}
		cfg.SessionFile = filepath.Join(home, ".task-tracker", "session.json")
	}
	return cfg
}
