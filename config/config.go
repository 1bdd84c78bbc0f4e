package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	MediaLocal = "local"
	MediaS3    = "s3"

	devJWTSecret = "dev-insecure-jwt-secret"
)

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerPort string
	ServerHost string
	LogMode    string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration, only used for rate limiting
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Auth configuration
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SessionTTL      time.Duration
	CookieSecure    bool

	// Media storage for profile avatars
	MediaBackend string
	MediaRoot    string
	MediaURL     string
	S3Bucket     string
	S3Region     string

	CORSOrigins []string

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// LoadConfig builds a Config for the current environment from environment variables and
// Docker secrets.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := defaults(env)

	switch env {
	case CI:
		loadCIConfig(cfg)
	case Development, Test:
		loadDevConfig(cfg)
	case Production:
		loadProdConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func defaults(env Environment) *Config {
	return &Config{
		Env:               env,
		ServerPort:        "8000",
		ServerHost:        "0.0.0.0",
		LogMode:           "development",
		DBDriver:          DriverPostgres,
		DBHost:            "localhost",
		DBPort:            "5432",
		DBUser:            "postgres",
		DBName:            "cancerinfo",
		DBSSLMode:         "disable",
		SQLitePath:        "cancerinfo.db",
		RedisHost:         "localhost",
		RedisPort:         "6379",
		AccessTokenTTL:    5 * time.Minute,
		RefreshTokenTTL:   24 * time.Hour,
		SessionTTL:        14 * 24 * time.Hour,
		MediaBackend:      MediaLocal,
		MediaRoot:         "media",
		MediaURL:          "/media/",
		S3Bucket:          "cancerinfo-media",
		CORSOrigins:       []string{"http://localhost:3000", "http://localhost:5173"},
		RateLimitRequests: 20,
		RateLimitWindow:   time.Minute,
	}
}

// loadCIConfig reads everything from plain environment variables.
func loadCIConfig(cfg *Config) {
	applyEnv(cfg, os.Getenv)
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("TEST_JWT_SECRET")
	}
	if cfg.DBPassword == "" {
		cfg.DBPassword = os.Getenv("TEST_DB_PASSWORD")
	}
}

// loadDevConfig prefers environment variables and falls back to Docker secrets.
func loadDevConfig(cfg *Config) {
	applyEnv(cfg, func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return readSecret(strings.ToLower(key))
	})
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
	}
}

// loadProdConfig prefers Docker secrets and falls back to environment variables.
func loadProdConfig(cfg *Config) {
	applyEnv(cfg, func(key string) string {
		if v := readSecret(strings.ToLower(key)); v != "" {
			return v
		}
		return os.Getenv(key)
	})
	cfg.LogMode = "production"
	cfg.CookieSecure = true
}

func applyEnv(cfg *Config, get func(string) string) {
	setString(&cfg.ServerPort, get("SERVER_PORT"))
	setString(&cfg.ServerHost, get("SERVER_HOST"))
	setString(&cfg.LogMode, get("LOG_MODE"))

	setString(&cfg.DBDriver, strings.ToLower(get("DB_DRIVER")))
	setString(&cfg.DBHost, get("DB_HOST"))
	setString(&cfg.DBPort, get("DB_PORT"))
	setString(&cfg.DBUser, get("DB_USER"))
	setString(&cfg.DBPassword, get("DB_PASSWORD"))
	setString(&cfg.DBName, get("DB_NAME"))
	setString(&cfg.DBSSLMode, get("DB_SSL_MODE"))
	setString(&cfg.SQLitePath, get("SQLITE_PATH"))

	setString(&cfg.RedisHost, get("REDIS_HOST"))
	setString(&cfg.RedisPort, get("REDIS_PORT"))
	setString(&cfg.RedisPassword, get("REDIS_PASSWORD"))
	setString(&cfg.RedisURL, get("REDIS_URL"))
	setInt(&cfg.RedisDB, get("REDIS_DB"))

	setString(&cfg.JWTSecret, get("JWT_SECRET"))
	setDuration(&cfg.AccessTokenTTL, get("ACCESS_TOKEN_TTL"))
	setDuration(&cfg.RefreshTokenTTL, get("REFRESH_TOKEN_TTL"))
	setDuration(&cfg.SessionTTL, get("SESSION_TTL"))
	if v := get("COOKIE_SECURE"); v != "" {
		cfg.CookieSecure, _ = strconv.ParseBool(v)
	}

	setString(&cfg.MediaBackend, strings.ToLower(get("MEDIA_BACKEND")))
	setString(&cfg.MediaRoot, get("MEDIA_ROOT"))
	setString(&cfg.MediaURL, get("MEDIA_URL"))
	setString(&cfg.S3Bucket, get("S3_BUCKET_NAME"))
	setString(&cfg.S3Region, get("AWS_REGION"))

	if v := get("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSOrigins = origins
	}

	setInt(&cfg.RateLimitRequests, get("RATE_LIMIT_REQUESTS"))
	setDuration(&cfg.RateLimitWindow, get("RATE_LIMIT_WINDOW"))
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v string) {
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setDuration(dst *time.Duration, v string) {
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// PostgresDSN returns the lib/pq connection string for the configured database.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}
