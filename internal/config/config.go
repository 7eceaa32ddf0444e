// Package config loads gateway configuration from an optional YAML file and
// ISSUEGATE_-prefixed environment variables. Environment values override file
// values. A double underscore separates nesting levels, so a single
// underscore stays part of the key: ISSUEGATE_TRACKER__API_KEY sets
// tracker.api_key.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Tracker  TrackerConfig  `koanf:"tracker"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Storage  StorageConfig  `koanf:"storage"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
	// RequestTimeout bounds each HTTP request, as a duration string.
	RequestTimeout string `koanf:"request_timeout"`
}

type TrackerConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
}

type MetricsConfig struct {
	Capacity int `koanf:"capacity"`
	// ReportInterval controls the periodic metrics report; empty disables it.
	ReportInterval string `koanf:"report_interval"`
}

type StorageConfig struct {
	Type   string       `koanf:"type"` // memory, sqlite, none
	SQLite SQLiteConfig `koanf:"sqlite"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

type PipelineConfig struct {
	// StepTimeout bounds each pipeline step's dispatch; empty or "0s"
	// disables enforcement.
	StepTimeout string `koanf:"step_timeout"`
}

type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
}

// Load reads configuration. path may be empty to skip file loading.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("ISSUEGATE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "ISSUEGATE_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	// Default values
	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}
	if !k.Exists("server.request_timeout") {
		k.Set("server.request_timeout", "30s")
	}
	if !k.Exists("metrics.capacity") {
		k.Set("metrics.capacity", 1000)
	}
	if !k.Exists("metrics.report_interval") {
		k.Set("metrics.report_interval", "60s")
	}
	if !k.Exists("storage.type") {
		k.Set("storage.type", "memory")
	}
	if !k.Exists("storage.sqlite.path") {
		k.Set("storage.sqlite.path", "./issuegate.db")
	}
	if !k.Exists("log.level") {
		k.Set("log.level", "info")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// RequestTimeout parses the server request timeout, falling back to 30s.
func (c *Config) RequestTimeout() time.Duration {
	return parseDuration(c.Server.RequestTimeout, 30*time.Second)
}

// ReportInterval parses the metrics report interval; 0 disables reporting.
func (c *Config) ReportInterval() time.Duration {
	return parseDuration(c.Metrics.ReportInterval, 0)
}

// StepTimeout parses the pipeline step timeout; 0 disables enforcement.
func (c *Config) StepTimeout() time.Duration {
	return parseDuration(c.Pipeline.StepTimeout, 0)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
