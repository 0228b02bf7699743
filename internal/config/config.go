package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Dashboard DashboardConfig
	Store     StoreConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values. An empty DSN selects the
// in-memory ticket store.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values and the ticket page cache switch.
type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	CacheEnabled    bool
	CacheTTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// DashboardConfig tunes dashboard sessions and retrieval.
type DashboardConfig struct {
	ItemsPerPage           int
	StaleTimeSeconds       int
	FetchLatencyMillis     int
	SessionIdleMinutes     int
	JanitorIntervalSeconds int
}

// StoreConfig controls demo data generation.
type StoreConfig struct {
	SeedCount int
	Seed      uint64
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	seed, err := strconv.ParseUint(getEnv("STORE_SEED", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_SEED: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-dashboard"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:            getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:        os.Getenv("REDIS_PASSWORD"),
			DB:              redisDB,
			CacheEnabled:    getEnvAsBool("REDIS_CACHE_ENABLED", false),
			CacheTTLSeconds: getEnvAsInt("REDIS_CACHE_TTL_SECONDS", 30),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Dashboard: DashboardConfig{
			ItemsPerPage:           getEnvAsInt("DASHBOARD_ITEMS_PER_PAGE", 10),
			StaleTimeSeconds:       getEnvAsInt("DASHBOARD_STALE_TIME_SECONDS", 300),
			FetchLatencyMillis:     getEnvAsInt("DASHBOARD_FETCH_LATENCY_MS", 300),
			SessionIdleMinutes:     getEnvAsInt("DASHBOARD_SESSION_IDLE_MINUTES", 30),
			JanitorIntervalSeconds: getEnvAsInt("DASHBOARD_JANITOR_INTERVAL_SECONDS", 60),
		},
		Store: StoreConfig{
			SeedCount: getEnvAsInt("STORE_SEED_COUNT", 50),
			Seed:      seed,
		},
	}

	if cfg.Dashboard.ItemsPerPage <= 0 {
		return nil, fmt.Errorf("invalid DASHBOARD_ITEMS_PER_PAGE: %d", cfg.Dashboard.ItemsPerPage)
	}
	if cfg.Store.SeedCount < 0 {
		return nil, fmt.Errorf("invalid STORE_SEED_COUNT: %d", cfg.Store.SeedCount)
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// StaleTime returns the dashboard freshness window.
func (d DashboardConfig) StaleTime() time.Duration {
	return time.Duration(d.StaleTimeSeconds) * time.Second
}

// FetchLatency returns the artificial retrieval delay.
func (d DashboardConfig) FetchLatency() time.Duration {
	if d.FetchLatencyMillis <= 0 {
		return 0
	}
	return time.Duration(d.FetchLatencyMillis) * time.Millisecond
}

// SessionIdle returns how long an untouched dashboard session survives.
func (d DashboardConfig) SessionIdle() time.Duration {
	return time.Duration(d.SessionIdleMinutes) * time.Minute
}

// JanitorInterval returns the idle session sweep period.
func (d DashboardConfig) JanitorInterval() time.Duration {
	if d.JanitorIntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(d.JanitorIntervalSeconds) * time.Second
}

// CacheTTL returns the Redis ticket page TTL.
func (r RedisConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
