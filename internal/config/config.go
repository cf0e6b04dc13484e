package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port     string
	LogLevel string

	UserStore   string
	MongoURI    string
	MongoDB     string
	PostgresDSN string

	SessionStore  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration
	CookieSecure  bool

	BcryptCost  int
	CORSOrigins []string
}

// Load reads the environment, after merging an optional .env file, and
// validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from lookup without validating it. Unset keys take
// their defaults; a set but malformed number or duration is an error.
func FromEnv(lookup func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(lookup(key)); v != "" {
			return v
		}
		return fallback
	}
	var errs []error
	atoi := func(key, fallback string) int {
		n, err := strconv.Atoi(get(key, fallback))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return n
	}
	duration := func(key, fallback string) time.Duration {
		d, err := time.ParseDuration(get(key, fallback))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return d
	}
	cfg := &Config{
		Port:     get("PORT", "8080"),
		LogLevel: get("LOG_LEVEL", "info"),

		UserStore:   strings.ToLower(get("USER_STORE", StoreMongo)),
		MongoURI:    get("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     get("MONGO_DB", "vipauth"),
		PostgresDSN: get("POSTGRES_DSN", ""),

		SessionStore:  strings.ToLower(get("SESSION_STORE", StoreRedis)),
		RedisAddr:     get("REDIS_ADDR", "localhost:6379"),
		RedisPassword: get("REDIS_PASSWORD", ""),
		RedisDB:       atoi("REDIS_DB", "0"),
		SessionTTL:    duration("SESSION_TTL", "24h"),
		CookieSecure:  get("COOKIE_SECURE", "false") == "true",

		BcryptCost:  atoi("BCRYPT_COST", "10"),
		CORSOrigins: splitList(get("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.UserStore {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for USER_STORE=%s", StoreMongo)
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for USER_STORE=%s", StorePostgres)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown USER_STORE %q", c.UserStore)
	}

	switch c.SessionStore {
	case StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be within [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
