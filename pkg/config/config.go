package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Data sources for raw metrics
const (
	DataSourceYahoo    = "yahoo"
	DataSourcePostgres = "postgres"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Market data / universe
	MarketData MarketDataConfig
	Universe   UniverseConfig

	// Ranking
	StrategyConfig  string // path to strategy YAML, empty = built-in defaults
	RefreshSchedule string // cron with seconds

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// MarketDataConfig holds market-data provider settings
type MarketDataConfig struct {
	Source       string // yahoo | postgres
	BaseURL      string
	RatePerSec   int
	Concurrency  int
	CacheTTL     time.Duration
	PriceRange   string // chart range, e.g. 1y
	FetchTimeout time.Duration
}

// UniverseConfig holds universe provider settings
type UniverseConfig struct {
	URL     string   // constituents page
	Tickers []string // static override, comma separated in env
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		MarketData: MarketDataConfig{
			Source:       getEnv("DATA_SOURCE", DataSourceYahoo),
			BaseURL:      getEnv("YAHOO_BASE_URL", "https://query2.finance.yahoo.com"),
			RatePerSec:   getEnvAsInt("FETCH_RATE_PER_SEC", 5),
			Concurrency:  getEnvAsInt("FETCH_CONCURRENCY", 8),
			CacheTTL:     getEnvAsDuration("CACHE_TTL", "24h"),
			PriceRange:   getEnv("PRICE_RANGE", "1y"),
			FetchTimeout: getEnvAsDuration("FETCH_TIMEOUT", "15s"),
		},

		Universe: UniverseConfig{
			URL:     getEnv("UNIVERSE_URL", "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"),
			Tickers: getEnvAsList("UNIVERSE_TICKERS"),
		},

		StrategyConfig:  getEnv("STRATEGY_CONFIG", ""),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 30 6 * * *"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.MarketData.Source {
	case DataSourceYahoo:
	case DataSourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_SOURCE=%s", DataSourcePostgres)
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be one of: %s, %s", DataSourceYahoo, DataSourcePostgres)
	}

	if c.MarketData.Concurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be >= 1")
	}
	if c.MarketData.RatePerSec < 1 {
		return fmt.Errorf("FETCH_RATE_PER_SEC must be >= 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
