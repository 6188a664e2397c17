package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	DB         DBConfig         `yaml:"db"`
	Log        LogConfig        `yaml:"log"`
	Campus     CampusConfig     `yaml:"campus"`
	Supervisor SupervisorConfig `yaml:"supervisor"`
	Checkin    CheckinConfig    `yaml:"checkin"`
	Sync       SyncConfig       `yaml:"sync"`
}

type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	RatePerMin int    `yaml:"rate_per_min"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type CampusConfig struct {
	ID string `yaml:"id"`
}

type SupervisorConfig struct {
	Issuer     string        `yaml:"issuer"`
	SigningKey string        `yaml:"signing_key"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type CheckinConfig struct {
	CodeLength int `yaml:"code_length"`
}

type SyncConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BackoffBase time.Duration `yaml:"backoff_base"`
	BackoffCap  time.Duration `yaml:"backoff_cap"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:       "0.0.0.0",
			Port:       8080,
			RatePerMin: 0,
		},
		DB: DBConfig{
			Path: "narthex.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Campus: CampusConfig{
			ID: "main",
		},
		Supervisor: SupervisorConfig{
			Issuer:     "narthex",
			SessionTTL: 30 * time.Minute,
		},
		Checkin: CheckinConfig{
			CodeLength: 4,
		},
		Sync: SyncConfig{
			MaxAttempts: 5,
			BackoffBase: time.Second,
			BackoffCap:  time.Minute,
		},
	}

	if path := os.Getenv("NARTHEX_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("NARTHEX_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("NARTHEX_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NARTHEX_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if rateStr := os.Getenv("NARTHEX_RATE_PER_MIN"); rateStr != "" {
		rate, err := strconv.Atoi(rateStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NARTHEX_RATE_PER_MIN: %w", err)
		}
		cfg.Server.RatePerMin = rate
	}
	if dbPath := os.Getenv("NARTHEX_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("NARTHEX_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if campus := os.Getenv("NARTHEX_CAMPUS_ID"); campus != "" {
		cfg.Campus.ID = campus
	}
	if key := os.Getenv("NARTHEX_SIGNING_KEY"); key != "" {
		cfg.Supervisor.SigningKey = key
	}
	if ttlStr := os.Getenv("NARTHEX_SESSION_TTL"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NARTHEX_SESSION_TTL: %w", err)
		}
		cfg.Supervisor.SessionTTL = ttl
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
