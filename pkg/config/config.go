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

// Source backends for table reads
const (
	BackendPostgres = "postgres"
	BackendREST     = "rest"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Source selects how source tables are read (postgres | rest)
	Source SourceConfig

	// Database
	Database DatabaseConfig

	// Supabase REST (PostgREST)
	Supabase SupabaseConfig

	// Redis
	Redis RedisConfig

	// Dashboard derivation
	Dashboard DashboardConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// SourceConfig selects the table reader backend
type SourceConfig struct {
	Backend      string
	FetchTimeout time.Duration // overall deadline across the fan-out of table reads
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL    string
	Schema string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// SupabaseConfig holds the PostgREST endpoint used by the rest backend
type SupabaseConfig struct {
	URL      string
	Key      string
	PageSize int
	RPS      int // client-side request rate limit
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DashboardConfig holds derivation settings
type DashboardConfig struct {
	ConfigPath      string // YAML with panels, bands and the EMA matrix layout
	Watch           bool   // hot reload ConfigPath on change
	CacheTTL        time.Duration
	RefreshSchedule string // cron (with seconds); empty disables the refresher
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Source: SourceConfig{
			Backend:      strings.ToLower(getEnv("SOURCE_BACKEND", BackendPostgres)),
			FetchTimeout: getEnvAsDuration("FETCH_TIMEOUT", "10s"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Schema:          getEnv("DB_SCHEMA", "public"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Supabase: SupabaseConfig{
			URL:      strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
			Key:      getEnv("SUPABASE_KEY", ""),
			PageSize: getEnvAsInt("SUPABASE_PAGE_SIZE", 1000),
			RPS:      getEnvAsInt("SUPABASE_RPS", 10),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Dashboard: DashboardConfig{
			ConfigPath:      getEnv("DASHBOARD_CONFIG", "configs/dashboard.yaml"),
			Watch:           getEnvAsBool("DASHBOARD_WATCH", false),
			CacheTTL:        getEnvAsDuration("CACHE_TTL", "1m"),
			RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 */5 * * * *"),
		},

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

	switch c.Source.Backend {
	case BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendREST:
		if c.Supabase.URL == "" || c.Supabase.Key == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required for the rest backend")
		}
		if c.Supabase.PageSize <= 0 {
			return fmt.Errorf("SUPABASE_PAGE_SIZE must be > 0")
		}
	default:
		return fmt.Errorf("SOURCE_BACKEND must be one of: %s, %s", BackendPostgres, BackendREST)
	}

	if c.Source.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be > 0")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

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
