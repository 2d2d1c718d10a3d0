package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseName    string `envconfig:"DATABASE_NAME"`
	DatabaseMaxConn int32  `envconfig:"DATABASE_MAX_CONNS" default:"20"`

	// Game data file; the built-in tables are used when empty
	GameDataPath string `envconfig:"GAME_DATA_PATH"`

	// Rate limiting of mutating calls per account
	RateLimitCalls  int           `envconfig:"RATE_LIMIT_CALLS" default:"5"`
	RateLimitPeriod time.Duration `envconfig:"RATE_LIMIT_PERIOD" default:"10s"`

	// Result cache
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	CacheMaxSize int           `envconfig:"CACHE_MAX_SIZE" default:"10000"`

	// Idle sweepers
	LimiterCleanupInterval time.Duration `envconfig:"LIMITER_CLEANUP_INTERVAL" default:"5m"`
	CacheCleanupInterval   time.Duration `envconfig:"CACHE_CLEANUP_INTERVAL" default:"1m"`

	// Seed for the summon random source; zero seeds from the clock
	RandomSeed int64 `envconfig:"RANDOM_SEED" default:"0"`

	// Metrics endpoint, e.g. ":9090"; disabled when empty
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// Environment
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// Load reads configuration from the environment without touching the
// global instance
func Load() (*Config, error) {
	return load()
}

func load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required and bounded settings
func (c *Config) Validate() error {
	if c.Environment != "test" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.RateLimitCalls <= 0 || c.RateLimitPeriod <= 0 {
		return fmt.Errorf("RATE_LIMIT_CALLS and RATE_LIMIT_PERIOD must be positive")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.LimiterCleanupInterval <= 0 || c.CacheCleanupInterval <= 0 {
		return fmt.Errorf("cleanup intervals must be positive")
	}
	if c.DatabaseMaxConn <= 0 {
		return fmt.Errorf("DATABASE_MAX_CONNS must be positive")
	}
	return nil
}

// GetDatabaseURL combines the base URL and database name
func (c *Config) GetDatabaseURL() string {
	return ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the process runs in production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// ConstructDatabaseURL appends the database name to a base URL and adds
// sslmode=disable when no sslmode is given
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	baseURL = strings.TrimRight(baseURL, "/")
	var databaseURL string
	if strings.Contains(baseURL, "?") {
		parts := strings.SplitN(baseURL, "?", 2)
		databaseURL = fmt.Sprintf("%s/%s?%s", parts[0], databaseName, parts[1])
	} else {
		databaseURL = fmt.Sprintf("%s/%s", baseURL, databaseName)
	}

	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "&"
		if !strings.Contains(databaseURL, "?") {
			separator = "?"
		}
		databaseURL = fmt.Sprintf("%s%ssslmode=disable", databaseURL, separator)
	}
	return databaseURL
}

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		DatabaseMaxConn:        5,
		RateLimitCalls:         1000,
		RateLimitPeriod:        time.Second,
		CacheTTL:               time.Minute,
		CacheMaxSize:           1000,
		LimiterCleanupInterval: time.Minute,
		CacheCleanupInterval:   time.Minute,
		RandomSeed:             1,
		LogLevel:               "debug",
		LogFormat:              "text",
		Environment:            "test",
	}
}
