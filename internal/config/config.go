// Package config loads the curator configuration.
//
// LOADING ORDER:
//  1. Start from the YAML file, if one is given. ${VAR} and ${VAR:-default}
//     are expanded from the environment before parsing.
//  2. Apply the env overrides the deployment scripts already set:
//     PORT, DB_PATH, RAKUTEN_APP_ID, LOG_LEVEL.
//  3. Fill anything still empty with defaults.
//  4. Validate with struct tags.
//
// Running without a file is fine: defaults plus env is a complete config.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the whole application configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Sources   SourcesConfig   `yaml:"sources"`
	Recommend RecommendConfig `yaml:"recommend"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec" validate:"min=1"`
	WriteTimeoutSec int `yaml:"write_timeout_sec" validate:"min=1"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec" validate:"min=1"`
}

// DatabaseConfig holds the SQLite location.
type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// IngestConfig holds the aggregator knobs.
type IngestConfig struct {
	PerSourceTimeoutSec int `yaml:"per_source_timeout_sec" validate:"min=1"`
	BudgetSec           int `yaml:"budget_sec" validate:"min=1"`
	SampleSize          int `yaml:"sample_size" validate:"min=1,max=200"`
	MaxCorpusSize       int `yaml:"max_corpus_size" validate:"min=0"` // 0 = unbounded
	Parallelism         int `yaml:"parallelism" validate:"min=0"`     // 0 = one goroutine per source
}

// SourcesConfig holds the adapter settings.
type SourcesConfig struct {
	UserAgent          string  `yaml:"user_agent"`
	RatePerSecond      float64 `yaml:"rate_per_second" validate:"gte=0"`
	Burst              int     `yaml:"burst" validate:"min=0"`
	BreakerFailures    uint32  `yaml:"breaker_failures"`
	BreakerCooldownSec int     `yaml:"breaker_cooldown_sec" validate:"min=0"`

	RakutenAppID string `yaml:"rakuten_app_id"`

	// Overrides, mostly for staging mirrors. Empty means the public site.
	ZennBaseURL     string `yaml:"zenn_base_url" validate:"omitempty,url"`
	QiitaBaseURL    string `yaml:"qiita_base_url" validate:"omitempty,url"`
	GekisakaFeedURL string `yaml:"gekisaka_feed_url" validate:"omitempty,url"`
	RakutenBaseURL  string `yaml:"rakuten_base_url" validate:"omitempty,url"`
}

// RecommendConfig holds ranking settings.
type RecommendConfig struct {
	TopN int `yaml:"top_n" validate:"min=1,max=100"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Load reads path (may be empty), applies env overrides and defaults, and validates.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}

		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv lets the plain env vars win over the file.
func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT value %q: %w", v, err)
		}
		c.HTTP.Port = port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("RAKUTEN_APP_ID"); v != "" {
		c.Sources.RakutenAppID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	return nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 15
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// an ingest may wait for the whole fan-out budget
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 30
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/curator.db"
	}
	if c.Ingest.PerSourceTimeoutSec <= 0 {
		c.Ingest.PerSourceTimeoutSec = 10
	}
	if c.Ingest.BudgetSec <= 0 {
		c.Ingest.BudgetSec = 20
	}
	if c.Ingest.SampleSize <= 0 {
		c.Ingest.SampleSize = 15
	}
	if c.Sources.UserAgent == "" {
		c.Sources.UserAgent = "Mozilla/5.0"
	}
	if c.Sources.RatePerSecond == 0 {
		c.Sources.RatePerSecond = 1
	}
	if c.Sources.Burst == 0 {
		c.Sources.Burst = 2
	}
	if c.Sources.BreakerFailures == 0 {
		c.Sources.BreakerFailures = 5
	}
	if c.Sources.BreakerCooldownSec <= 0 {
		c.Sources.BreakerCooldownSec = 60
	}
	if c.Recommend.TopN <= 0 {
		c.Recommend.TopN = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}

// SlogLevel maps Logging.Level to a slog level.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c IngestConfig) PerSourceTimeout() time.Duration {
	return time.Duration(c.PerSourceTimeoutSec) * time.Second
}

func (c IngestConfig) Budget() time.Duration {
	return time.Duration(c.BudgetSec) * time.Second
}

func (c SourcesConfig) BreakerCooldown() time.Duration {
	return time.Duration(c.BreakerCooldownSec) * time.Second
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
