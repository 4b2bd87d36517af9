// Package config loads YAML configuration by environment with ${VAR} expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the acervo API and worker configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Cache      CacheConfig      `yaml:"cache"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Search     SearchConfig     `yaml:"search"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	DSN              string `yaml:"dsn"`
	MaxConns         int    `yaml:"max_conns"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds the Redis query-embedding cache settings.
// Addrs empty disables the cache entirely.
type CacheConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	TTLDays  int      `yaml:"ttl_days"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	MaxChars   int    `yaml:"max_chars"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// EnrichmentConfig holds contextual-summary generation settings.
type EnrichmentConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Model        string `yaml:"model"`
	TimeoutSec   int    `yaml:"timeout_sec"`
	PreviewChars int    `yaml:"preview_chars"`
}

// IngestConfig holds ingestion worker settings.
type IngestConfig struct {
	PollIntervalSec int `yaml:"poll_interval_sec"`
	ChunkDelayMs    int `yaml:"chunk_delay_ms"`
	ProgressEvery   int `yaml:"progress_every"`
}

// SearchConfig holds hybrid retrieval settings.
type SearchConfig struct {
	VectorWeight     float64 `yaml:"vector_weight"`
	LexicalWeight    float64 `yaml:"lexical_weight"`
	DefaultLimit     int     `yaml:"default_limit"`
	MaxLimit         int     `yaml:"max_limit"`
	DefaultThreshold float64 `yaml:"default_threshold"`
	ResultCacheSec   int     `yaml:"result_cache_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Cache.TTLDays <= 0 {
		c.Cache.TTLDays = 30
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 768
	}
	if c.Embedding.MaxChars <= 0 {
		c.Embedding.MaxChars = 8000
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Enrichment.TimeoutSec <= 0 {
		c.Enrichment.TimeoutSec = 20
	}
	if c.Enrichment.PreviewChars <= 0 {
		c.Enrichment.PreviewChars = 4000
	}
	if c.Ingest.PollIntervalSec <= 0 {
		c.Ingest.PollIntervalSec = 5
	}
	if c.Ingest.ChunkDelayMs <= 0 {
		c.Ingest.ChunkDelayMs = 200
	}
	if c.Ingest.ProgressEvery <= 0 {
		c.Ingest.ProgressEvery = 5
	}
	if c.Search.VectorWeight <= 0 {
		c.Search.VectorWeight = 0.6
	}
	if c.Search.LexicalWeight <= 0 {
		c.Search.LexicalWeight = 0.4
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 5
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 50
	}
	if c.Search.ResultCacheSec <= 0 {
		c.Search.ResultCacheSec = 60
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Search.DefaultThreshold < 0 || c.Search.DefaultThreshold > 1 {
		return fmt.Errorf("search.default_threshold must be between 0 and 1, got %g",
			c.Search.DefaultThreshold)
	}
	if c.Enrichment.Enabled && c.Enrichment.Model == "" {
		return fmt.Errorf("enrichment.model is required when enrichment is enabled")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
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
