// Package config loads the per-environment YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the recodex configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Search    SearchConfig    `yaml:"search"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
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

// CorpusConfig locates the embedded catalog.
type CorpusConfig struct {
	Path               string `yaml:"path"`
	LoadTimeoutSec     int    `yaml:"load_timeout_sec"`
	ExpectedDimensions int    `yaml:"expected_dimensions"` // 0 = take D from the first record
}

// EmbeddingConfig holds the query embedding provider settings.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"` // openai (any OpenAI-compatible endpoint)
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
	TimeoutSec       int    `yaml:"timeout_sec"`
}

// CacheConfig selects the query embedding cache backend.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // none, redis, bolt (default: none)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	Path             string   `yaml:"path"`
	TTLSec           int      `yaml:"ttl_sec"` // 0 = no expiry
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds query defaults and ranking parallelism.
type SearchConfig struct {
	DefaultTopK       int `yaml:"default_top_k"`
	Workers           int `yaml:"workers"` // 0 = GOMAXPROCS
	ParallelThreshold int `yaml:"parallel_threshold"`
	MaxQueryLength    int `yaml:"max_query_length"`
}

// Cache drivers.
const (
	CacheNone  = "none"
	CacheRedis = "redis"
	CacheBolt  = "bolt"
)

// LoadTimeout returns the corpus load timeout.
func (c CorpusConfig) LoadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutSec) * time.Second
}

// Timeout returns the per-request embedding timeout.
func (c EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
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
	if c.Corpus.LoadTimeoutSec <= 0 {
		c.Corpus.LoadTimeoutSec = 60
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 15
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheNone
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Search.DefaultTopK <= 0 {
		c.Search.DefaultTopK = 5
	}
	if c.Search.ParallelThreshold <= 0 {
		c.Search.ParallelThreshold = 4096
	}
	if c.Search.MaxQueryLength <= 0 {
		c.Search.MaxQueryLength = 1000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Corpus.Path == "" {
		return fmt.Errorf("corpus.path is required")
	}
	if c.Corpus.ExpectedDimensions < 0 {
		return fmt.Errorf("corpus.expected_dimensions must not be negative")
	}
	if c.Embedding.Provider != "openai" {
		return fmt.Errorf("embedding.provider must be \"openai\", got %q", c.Embedding.Provider)
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Embedding.Dimensions > 0 && c.Corpus.ExpectedDimensions > 0 &&
		c.Embedding.Dimensions != c.Corpus.ExpectedDimensions {
		return fmt.Errorf("embedding.dimensions (%d) must match corpus.expected_dimensions (%d)",
			c.Embedding.Dimensions, c.Corpus.ExpectedDimensions)
	}
	switch c.Cache.Driver {
	case CacheNone:
	case CacheRedis:
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for the redis driver")
		}
	case CacheBolt:
		if c.Cache.Path == "" {
			return fmt.Errorf("cache.path is required for the bolt driver")
		}
	default:
		return fmt.Errorf("cache.driver must be one of none, redis, bolt, got %q", c.Cache.Driver)
	}
	if c.Search.Workers < 0 {
		return fmt.Errorf("search.workers must not be negative")
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
