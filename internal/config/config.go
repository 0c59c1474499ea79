// Package config loads the service configuration from an optional YAML
// file and environment variables. Environment variables win.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Match     MatchConfig     `yaml:"match"`
	Web       WebConfig       `yaml:"web"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // memory, file or sqlite
	Path    string `yaml:"path"`    // file root dir, or sqlite database file
}

type ExtractorConfig struct {
	URL string `yaml:"url"` // defaults to http://localhost:8000
	Dim int    `yaml:"dim"` // defaults to 128
}

type IngestConfig struct {
	Workers             int `yaml:"workers"`               // defaults to 8
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds"` // defaults to 15
}

type MatchConfig struct {
	Threshold        float64 `yaml:"threshold"`         // defaults to 0.5
	SimilarThreshold float64 `yaml:"similar_threshold"` // defaults to 0.9
}

type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	PublicBaseURL string `yaml:"public_base_url"` // base URL for photo links
}

// envStr reads an environment variable, falling back to the given value.
func envStr(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the fallback if the env var is unset, empty, or invalid.
func envInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return fallback
}

// envFloat reads an environment variable as a float in (0, 1].
func envFloat(key string, fallback float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f <= 1 {
		return f
	}
	return fallback
}

// defaults returns the built-in configuration.
func defaults() *Config {
	return &Config{
		Storage:   StorageConfig{Backend: "file", Path: "data"},
		Extractor: ExtractorConfig{URL: "http://localhost:8000", Dim: 128},
		Ingest:    IngestConfig{Workers: 8, FetchTimeoutSeconds: 15},
		Match:     MatchConfig{Threshold: 0.5, SimilarThreshold: 0.9},
		Web:       WebConfig{Host: "0.0.0.0", Port: 8080, PublicBaseURL: "http://localhost:8080"},
	}
}

// Load builds the configuration from defaults, the optional YAML file
// named by FACE_GALLERY_CONFIG, and environment variables, in that order.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("FACE_GALLERY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %q: %w", path, err)
		}
	}

	cfg.Storage.Backend = envStr("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Path = envStr("STORAGE_PATH", cfg.Storage.Path)
	cfg.Extractor.URL = envStr("EXTRACTOR_URL", cfg.Extractor.URL)
	cfg.Extractor.Dim = envInt("EMBEDDING_DIM", cfg.Extractor.Dim)
	cfg.Ingest.Workers = envInt("INGEST_WORKERS", cfg.Ingest.Workers)
	cfg.Ingest.FetchTimeoutSeconds = envInt("FETCH_TIMEOUT_SECONDS", cfg.Ingest.FetchTimeoutSeconds)
	cfg.Match.Threshold = envFloat("MATCH_THRESHOLD", cfg.Match.Threshold)
	cfg.Match.SimilarThreshold = envFloat("SIMILAR_THRESHOLD", cfg.Match.SimilarThreshold)
	cfg.Web.Host = envStr("WEB_HOST", cfg.Web.Host)
	cfg.Web.Port = envInt("WEB_PORT", cfg.Web.Port)
	cfg.Web.PublicBaseURL = envStr("PUBLIC_BASE_URL", cfg.Web.PublicBaseURL)

	switch cfg.Storage.Backend {
	case "memory", "file", "sqlite":
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	return cfg, nil
}
