package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Geocoder  GeocoderConfig
	Redis     RedisConfig
	Media     MediaConfig
	S3        S3Config
	Dashboard DashboardConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds the secret used to verify staff bearer tokens.
type AuthConfig struct {
	JWTSecret string
}

// GeocoderConfig holds settings for the external geocoding provider and
// for phone number parsing.
type GeocoderConfig struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	PhoneRegion string // default region for phone numbers, ISO 3166-1 alpha-2
}

// RedisConfig holds the optional redis tier of the geocode cache.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // 0 keeps entries until evicted
}

// MediaConfig holds where uploaded product images and bundled storefront
// assets are served from.
type MediaConfig struct {
	BaseURL   string
	StaticURL string
}

// S3Config holds AWS S3 configuration for product images.
type S3Config struct {
	Enabled    bool
	Bucket     string
	Region     string
	Prefix     string // Path prefix within bucket (e.g., "images/")
	PresignTTL time.Duration
}

// DashboardConfig tunes the order assignment view.
type DashboardConfig struct {
	Workers     int
	NumericSort bool
}

// Load loads configuration from environment variables. A .env file in the
// working directory, if present, is applied first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: loadDatabase(),
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Geocoder: GeocoderConfig{
			BaseURL:     getEnv("GEOCODER_URL", "https://geocode-maps.yandex.ru/1.x"),
			APIKey:      getEnv("GEOCODER_API_KEY", ""),
			Timeout:     getEnvAsDuration("GEOCODER_TIMEOUT", 10*time.Second),
			PhoneRegion: getEnv("PHONE_REGION", "RU"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsDuration("REDIS_TTL", 0),
		},
		Media: MediaConfig{
			BaseURL:   getEnv("MEDIA_BASE_URL", "/media/"),
			StaticURL: getEnv("STATIC_BASE_URL", "/static/"),
		},
		S3: S3Config{
			Enabled:    getEnvAsBool("S3_ENABLED", false),
			Bucket:     getEnv("S3_BUCKET", ""),
			Region:     getEnv("S3_REGION", "us-east-1"),
			Prefix:     getEnv("S3_PREFIX", "images/"),
			PresignTTL: getEnvAsDuration("S3_PRESIGN_TTL", 15*time.Minute),
		},
		Dashboard: DashboardConfig{
			Workers:     getEnvAsInt("DASHBOARD_WORKERS", 4),
			NumericSort: getEnvAsBool("DASHBOARD_NUMERIC_SORT", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings, for tools that never
// serve HTTP.
func LoadDatabase() DatabaseConfig {
	_ = godotenv.Load()
	return loadDatabase()
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "foodcart"),
		MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
		MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
		MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if c.Geocoder.APIKey == "" {
		return fmt.Errorf("geocoder API key is required")
	}

	if c.Geocoder.BaseURL == "" {
		return fmt.Errorf("geocoder URL is required")
	}

	if c.Geocoder.Timeout <= 0 {
		return fmt.Errorf("geocoder timeout must be positive")
	}

	if len(c.Geocoder.PhoneRegion) != 2 {
		return fmt.Errorf("invalid phone region: %q (must be a two-letter country code)", c.Geocoder.PhoneRegion)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Dashboard.Workers < 1 {
		return fmt.Errorf("dashboard workers must be at least 1")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a time.Duration
// (e.g. "10s", "5m") or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
