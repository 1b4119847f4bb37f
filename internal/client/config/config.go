// Package config loads client configuration: YAML file first, then .env /
// environment overrides.
package config

import (
	"os"
	"strconv"
	"time"

	pkgerrors "ojcli/pkg/errors"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL      = "http://127.0.0.1:8000"
	DefaultTimeout      = 10 * time.Second
	DefaultStatePath    = "configs/ojcli_state.json"
	DefaultPollInterval = 2 * time.Second
	DefaultMaxPolls     = 150
)

// Config holds client configuration.
type Config struct {
	BaseURL      string        `yaml:"baseURL"`
	Timeout      time.Duration `yaml:"timeout"`
	StatePath    string        `yaml:"statePath"`
	PollInterval time.Duration `yaml:"pollInterval"`
	MaxPolls     *int          `yaml:"maxPolls"`
	PrettyJSON   *bool         `yaml:"prettyJSON"`
	Log          LogConfig     `yaml:"log"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	OutputPath string `yaml:"outputPath"`
}

// Load reads the YAML file at path and applies env overrides. A missing
// file is not an error; defaults plus environment apply.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, pkgerrors.Wrap(err, pkgerrors.ConfigLoadFailed)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, pkgerrors.Wrap(err, pkgerrors.ConfigLoadFailed)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// applyEnv layers OJCLI_* variables over the file. A .env in the working
// directory is read first, without clobbering real environment variables.
func applyEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("OJCLI_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("OJCLI_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("OJCLI_STATE_PATH"); v != "" {
		cfg.StatePath = v
	}
	if v := os.Getenv("OJCLI_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PollInterval = d
		}
	}
	if v := os.Getenv("OJCLI_MAX_POLLS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxPolls = &n
		}
	}
	if v := os.Getenv("OJCLI_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.StatePath == "" {
		cfg.StatePath = DefaultStatePath
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxPolls == nil {
		value := DefaultMaxPolls
		cfg.MaxPolls = &value
	}
	if cfg.PrettyJSON == nil {
		value := true
		cfg.PrettyJSON = &value
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
