package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that decodes from strings like "5s" in both
// TOML and environment variables.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type ServerConfig struct {
	Port string `toml:"port" env:"PORT" validate:"required,numeric"`
}

type GraphConfig struct {
	URI             string   `toml:"uri" env:"GRAPH_URI" validate:"required"`
	User            string   `toml:"user" env:"GRAPH_USER"`
	Password        string   `toml:"password" env:"GRAPH_PASSWORD"`
	Database        string   `toml:"database" env:"GRAPH_DATABASE"`
	QueryTimeout    Duration `toml:"query_timeout" env:"GRAPH_QUERY_TIMEOUT"`
	BreakerFailures uint32   `toml:"breaker_failures" env:"GRAPH_BREAKER_FAILURES" validate:"gte=1"`
	BreakerTimeout  Duration `toml:"breaker_timeout" env:"GRAPH_BREAKER_TIMEOUT"`
}

type EmbeddingConfig struct {
	Path       string `toml:"path" env:"EMBEDDING_PATH" validate:"required"`
	Dimensions int    `toml:"dimensions" env:"EMBEDDING_DIMENSIONS" validate:"gte=1,lte=1024"`
	// Schedule is a cron expression; empty disables in-process retraining.
	Schedule string `toml:"schedule" env:"EMBEDDING_SCHEDULE"`
}

type RecommendConfig struct {
	DefaultLimit      int    `toml:"default_limit" env:"RECOMMEND_DEFAULT_LIMIT" validate:"gte=1,lte=100"`
	DefaultStrategy   string `toml:"default_strategy" env:"RECOMMEND_DEFAULT_STRATEGY" validate:"oneof=graph neural hybrid"`
	ActivityCacheSize int    `toml:"activity_cache_size" env:"RECOMMEND_ACTIVITY_CACHE_SIZE" validate:"gte=1"`
}

type ExplainConfig struct {
	// Strict turns unrecognized state names into errors instead of a
	// generic sentence. Meant for development.
	Strict bool `toml:"strict" env:"EXPLAIN_STRICT"`
}

type LogConfig struct {
	Level  string `toml:"level" env:"LOG_LEVEL" validate:"oneof=trace debug info warn warning error disabled"`
	Format string `toml:"format" env:"LOG_FORMAT" validate:"oneof=json console"`
	Caller bool   `toml:"caller" env:"LOG_CALLER"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Graph     GraphConfig     `toml:"graph"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Recommend RecommendConfig `toml:"recommend"`
	Explain   ExplainConfig   `toml:"explain"`
	Log       LogConfig       `toml:"log"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Graph: GraphConfig{
			URI:             "bolt://localhost:7687",
			User:            "neo4j",
			Password:        "password",
			QueryTimeout:    Duration{10 * time.Second},
			BreakerFailures: 5,
			BreakerTimeout:  Duration{30 * time.Second},
		},
		Embedding: EmbeddingConfig{
			Path:       "data/graph_embeddings.json",
			Dimensions: 32,
		},
		Recommend: RecommendConfig{
			DefaultLimit:      5,
			DefaultStrategy:   "hybrid",
			ActivityCacheSize: 1024,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads the TOML file at path on top of the defaults, then applies
// environment overrides and validates the result. A missing file is not an
// error: defaults plus environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML '%s': %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
