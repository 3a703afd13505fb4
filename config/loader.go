package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPaths are tried in order when Load is called without an
// explicit path.
var DefaultPaths = []string{"config.yml", "config.yaml"}

// Load reads, overlays and validates the application configuration.
// A .env file (if present) is folded into the environment first, then
// the YAML file is read, then BOARD_* environment variables override
// individual fields. The API key in particular is usually supplied via
// environment rather than checked into the config file.
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	paths := DefaultPaths
	if path != "" {
		paths = []string{path}
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("BOARD_TRIP_UPDATES_URL"); v != "" {
		cfg.Feed.TripUpdatesURL = v
	}
	if v := os.Getenv("BOARD_SERVICE_ALERTS_URL"); v != "" {
		cfg.Feed.ServiceAlertsURL = v
	}
	if v := os.Getenv("BOARD_API_KEY"); v != "" {
		cfg.Feed.APIKey = v
	}
	if v := os.Getenv("BOARD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("BOARD_POLL_INTERVAL_SEC"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			cfg.Feed.PollIntervalSec = sec
		}
	}
	if v := os.Getenv("BOARD_FAVORITE_STOP"); v != "" {
		cfg.Board.FavoriteStop = v
	}
	if v := os.Getenv("BOARD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
}
