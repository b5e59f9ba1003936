// Package config loads the dashboard configuration from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"weather-dashboard/models"
)

// Config represents the application configuration
type Config struct {
	AppEnv   string     `yaml:"appEnv"`
	LogLevel string     `yaml:"logLevel"`
	Level    slog.Level `yaml:"-"`
	HTTPAddr string     `yaml:"httpAddr"`

	OpenWeatherMap struct {
		APIKey    string  `yaml:"apiKey"`
		RateLimit bool    `yaml:"rateLimit"`
		RPS       float64 `yaml:"rps"`
		Burst     int     `yaml:"burst"`
	} `yaml:"openWeatherMap"`

	Cache struct {
		CurrentTTL time.Duration `yaml:"currentTTL"`
		GeocodeTTL time.Duration `yaml:"geocodeTTL"`
	} `yaml:"cache"`

	Recent struct {
		Capacity        int           `yaml:"capacity"`
		RefreshInterval time.Duration `yaml:"refreshInterval"`
	} `yaml:"recent"`

	SQLitePath string `yaml:"sqlitePath"`
	AssetsDir  string `yaml:"assetsDir"`

	// Place shown when the device location is unavailable
	Fallback struct {
		City    string `yaml:"city"`
		State   string `yaml:"state"`
		Country string `yaml:"country"`
	} `yaml:"fallback"`

	MQTT struct {
		Enabled  bool   `yaml:"enabled"`
		Broker   string `yaml:"broker"`
		Port     int    `yaml:"port"`
		ClientID string `yaml:"clientId"`
		Topic    string `yaml:"topic"`
	} `yaml:"mqtt"`
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	cfg := &Config{
		AppEnv:     "dev",
		LogLevel:   "info",
		Level:      slog.LevelInfo,
		HTTPAddr:   ":8080",
		SQLitePath: "data/dashboard.db",
	}
	cfg.OpenWeatherMap.RateLimit = true
	cfg.OpenWeatherMap.RPS = 1.0 // free tier: 60 calls/minute
	cfg.OpenWeatherMap.Burst = 5
	cfg.Cache.CurrentTTL = 5 * time.Minute
	cfg.Cache.GeocodeTTL = 24 * time.Hour
	cfg.Recent.Capacity = 6
	cfg.Recent.RefreshInterval = 15 * time.Minute
	cfg.Fallback.City = "Hyderabad"
	cfg.Fallback.State = "Telangana"
	cfg.Fallback.Country = "IN"
	cfg.MQTT.Port = 1883
	cfg.MQTT.ClientID = "weather-dashboard"
	cfg.MQTT.Topic = "weather/warnings"
	return cfg
}

// LoadConfig loads configuration from a YAML file over the defaults, then applies
// environment overrides. A missing file is not an error.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", filename, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", filename, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	cfg.Level = level

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(env string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = v
		}
	}

	setString("OPENWEATHERMAP_API_KEY", &c.OpenWeatherMap.APIKey)
	setString("APP_ENV", &c.AppEnv)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("HTTP_ADDR", &c.HTTPAddr)
	setString("SQLITE_PATH", &c.SQLitePath)
	setString("ASSETS_DIR", &c.AssetsDir)
	setString("MQTT_TOPIC", &c.MQTT.Topic)

	if v := strings.TrimSpace(os.Getenv("MQTT_BROKER")); v != "" {
		c.MQTT.Broker = v
		c.MQTT.Enabled = true
	}
	if v := strings.TrimSpace(os.Getenv("MQTT_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MQTT_PORT %q: %w", v, err)
		}
		c.MQTT.Port = port
	}
	return nil
}

// Validate checks the settings the service cannot run without
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OpenWeatherMap.APIKey) == "" {
		return &models.ConfigurationError{Setting: "OPENWEATHERMAP_API_KEY", Reason: "is not set"}
	}
	if c.OpenWeatherMap.RateLimit && c.OpenWeatherMap.RPS <= 0 {
		return &models.ConfigurationError{Setting: "openWeatherMap.rps", Reason: "must be positive"}
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return &models.ConfigurationError{Setting: "MQTT_BROKER", Reason: "is required when mqtt is enabled"}
	}
	return nil
}

// FallbackQuery returns the configured fallback place
func (c *Config) FallbackQuery() models.LocationQuery {
	return models.NewPlaceQuery(c.Fallback.City, c.Fallback.State, c.Fallback.Country)
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
