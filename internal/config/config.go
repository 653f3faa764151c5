package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Host string
	Port string

	DBDriver    string
	PostgresDSN string
	MongoURI    string
	MongoDB     string

	RedisAddr      string // empty disables the phrase cache
	RedisPassword  string
	PhraseCacheTTL time.Duration

	MinioEndpoint  string // empty serves the embedded images
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	SecretKey  string // hex; keys session MACs, security codes and password pepper
	JWTSecret  string
	JWTExpiry  time.Duration
	BcryptCost int

	LoginRatePerMinute int // 0 disables throttling of credential endpoints
	LoginBurst         int

	CORSOrigins []string
	LogLevel    string
	LogPretty   bool
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// Load reads the environment, after merging a .env file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Host:           getenv("HOST", ""),
		Port:           getenv("PORT", "8080"),
		DBDriver:       getenv("DB_DRIVER", DriverPostgres),
		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		MongoURI:       getenv("MONGO_URI", ""),
		MongoDB:        getenv("MONGO_DB", "emojiphrases"),
		RedisAddr:      getenv("REDIS_ADDR", ""),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "emojiphrases-static"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
		SecretKey:      getenv("SECRET_KEY", ""),
		JWTSecret:      getenv("JWT_SECRET", ""),
		CORSOrigins:    splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogPretty:      getenv("LOG_PRETTY", "false") == "true",
	}

	var err error
	if cfg.PhraseCacheTTL, err = time.ParseDuration(getenv("PHRASE_CACHE_TTL", "5m")); err != nil {
		return nil, fmt.Errorf("invalid PHRASE_CACHE_TTL: %w", err)
	}
	if cfg.JWTExpiry, err = time.ParseDuration(getenv("JWT_EXPIRY", "24h")); err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY: %w", err)
	}
	if cfg.BcryptCost, err = strconv.Atoi(getenv("BCRYPT_COST", "10")); err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	if cfg.LoginRatePerMinute, err = strconv.Atoi(getenv("LOGIN_RATE_PER_MINUTE", "10")); err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_PER_MINUTE: %w", err)
	}
	if cfg.LoginBurst, err = strconv.Atoi(getenv("LOGIN_BURST", "5")); err != nil {
		return nil, fmt.Errorf("invalid LOGIN_BURST: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY environment variable is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	switch c.DBDriver {
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres driver")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
