package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Feed query defaults
	Feed FeedConfig

	// Image upload limits
	Upload UploadConfig

	// Object storage configuration
	Storage StorageConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrationsPath string
	// MigrationVersion pins the schema; 0 migrates to the latest version
	MigrationVersion uint
	ConnectRetries   int
	ConnectBackoff   time.Duration
}

// FeedConfig holds default and maximum list sizes
type FeedConfig struct {
	RelatedLimit  int
	TrendingLimit int
	LatestLimit   int
	PopularLimit  int
	MaxLimit      int
}

// UploadConfig holds image upload limits
type UploadConfig struct {
	MaxSize      int64 // in bytes
	AllowedTypes []string
}

// StorageConfig holds S3-compatible object store settings
type StorageConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	UsePathStyle    bool
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables, after loading an
// optional .env file
func Load() (*Config, error) {
	loadDotEnv(getEnv("ENV_FILE", ".env"))

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			RequestTimeout:  getDurationEnv("REQUEST_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:             getEnv("DB_HOST", "localhost"),
			Port:             getEnv("DB_PORT", "5432"),
			User:             getEnv("DB_USER", "postgres"),
			Password:         getEnv("DB_PASSWORD", "postgres"),
			Name:             getEnv("DB_NAME", "journey_feed"),
			SSLMode:          getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:     getIntEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:     getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:      getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath:   getEnv("MIGRATIONS_PATH", "./migrations"),
			MigrationVersion: uint(getIntEnv("DB_MIGRATION_VERSION", 0)),
			ConnectRetries:   getIntEnv("DB_CONNECT_RETRIES", 5),
			ConnectBackoff:   getDurationEnv("DB_CONNECT_BACKOFF", 2*time.Second),
		},
		Feed: FeedConfig{
			RelatedLimit:  getIntEnv("FEED_RELATED_LIMIT", 3),
			TrendingLimit: getIntEnv("FEED_TRENDING_LIMIT", 4),
			LatestLimit:   getIntEnv("FEED_LATEST_LIMIT", 4),
			PopularLimit:  getIntEnv("FEED_POPULAR_LIMIT", 4),
			MaxLimit:      getIntEnv("FEED_MAX_LIMIT", 50),
		},
		Upload: UploadConfig{
			MaxSize:      getInt64Env("UPLOAD_MAX_SIZE", 5*1024*1024), // 5MB
			AllowedTypes: getListEnv("UPLOAD_ALLOWED_TYPES", []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}),
		},
		Storage: StorageConfig{
			Bucket:          getEnv("STORAGE_BUCKET", "journey-feed"),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", ""),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("STORAGE_SECRET_ACCESS_KEY", ""),
			PublicBaseURL:   getEnv("STORAGE_PUBLIC_BASE_URL", ""),
			UsePathStyle:    getBoolEnv("STORAGE_USE_PATH_STYLE", false),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.ConnectRetries < 1 {
		return fmt.Errorf("DB_CONNECT_RETRIES must be at least 1")
	}
	if c.Feed.MaxLimit < 1 {
		return fmt.Errorf("FEED_MAX_LIMIT must be at least 1")
	}
	for name, v := range map[string]int{
		"FEED_RELATED_LIMIT":  c.Feed.RelatedLimit,
		"FEED_TRENDING_LIMIT": c.Feed.TrendingLimit,
		"FEED_LATEST_LIMIT":   c.Feed.LatestLimit,
		"FEED_POPULAR_LIMIT":  c.Feed.PopularLimit,
	} {
		if v < 1 || v > c.Feed.MaxLimit {
			return fmt.Errorf("%s must be between 1 and FEED_MAX_LIMIT", name)
		}
	}
	if c.Upload.MaxSize < 1 {
		return fmt.Errorf("UPLOAD_MAX_SIZE must be positive")
	}
	return nil
}

// ClampLimit returns n bounded to [1, MaxLimit], or def when n is not positive
func (f FeedConfig) ClampLimit(n, def int) int {
	if n <= 0 {
		n = def
	}
	if n > f.MaxLimit {
		n = f.MaxLimit
	}
	if n < 1 {
		n = 1
	}
	return n
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// loadDotEnv populates the environment from path; a missing file is not an error
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
