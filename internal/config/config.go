package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the foundmatch service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Matching  MatchingConfig  `yaml:"matching"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds the sentence-embedding backend settings.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"` // metrics label only
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	Dimensions     int    `yaml:"dimensions"`
	TimeoutSec     int    `yaml:"timeout_sec"`      // per embedding call
	LoadTimeoutSec int    `yaml:"load_timeout_sec"` // first-use model load
	LoadRetrySec   int    `yaml:"load_retry_sec"`   // wait after a failed load before retrying
	CacheTTLHours  int    `yaml:"cache_ttl_hours"`  // 0 = keep forever
}

// WeightsConfig holds the composite score weights.
type WeightsConfig struct {
	Detail   float64 `yaml:"detail"`
	Location float64 `yaml:"location"`
	Date     float64 `yaml:"date"`
}

// MatchingConfig holds match engine tuning.
type MatchingConfig struct {
	Weights         WeightsConfig `yaml:"weights"`
	Threshold       int           `yaml:"threshold"`
	Workers         int           `yaml:"workers"`
	Stopwords       []string      `yaml:"stopwords"` // empty = built-in list
	Keywords        []string      `yaml:"keywords"`  // empty = built-in list
	DisableBoost    bool          `yaml:"disable_boost"`
	LocationTokens  int           `yaml:"location_token_cap"`
	PositionalBonus int           `yaml:"positional_bonus"`
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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "local"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 10
	}
	if c.Embedding.LoadTimeoutSec <= 0 {
		c.Embedding.LoadTimeoutSec = 60
	}
	if c.Embedding.LoadRetrySec <= 0 {
		c.Embedding.LoadRetrySec = 30
	}
	if c.Matching.Weights == (WeightsConfig{}) {
		c.Matching.Weights = WeightsConfig{Detail: 0.6, Location: 0.3, Date: 0.1}
	}
	if c.Matching.Threshold <= 0 {
		c.Matching.Threshold = 10
	}
	if c.Matching.Workers <= 0 {
		c.Matching.Workers = 4
	}
	if c.Matching.LocationTokens <= 0 {
		c.Matching.LocationTokens = 5
	}
	if c.Matching.PositionalBonus <= 0 {
		c.Matching.PositionalBonus = 15
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding.base_url is required")
	}
	w := c.Matching.Weights
	if w.Detail < 0 || w.Location < 0 || w.Date < 0 {
		return fmt.Errorf("matching.weights must be non-negative, got %+v", w)
	}
	if sum := w.Detail + w.Location + w.Date; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("matching.weights must sum to 1, got %.4f", sum)
	}
	if c.Matching.Threshold > 100 {
		return fmt.Errorf("matching.threshold must be within 1..100, got %d", c.Matching.Threshold)
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
