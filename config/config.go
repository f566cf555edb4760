package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Port string
	Env  string

	StoreDriver string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string

	// Sessions fall back to process memory when RedisAddr is empty.
	RedisAddr string
	RedisPass string
	RedisDB   int

	SessionSecret string
	SessionTTL    time.Duration

	BcryptCost         int
	LockoutMaxAttempts int
	LockoutDuration    time.Duration

	RateLimitMax    int64
	RateLimitWindow time.Duration
}

// LoadEnv reads .env when present and builds the config from the environment.
func LoadEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "3000"),
		Env:  getEnv("APP_ENV", EnvDevelopment),

		StoreDriver: getEnv("STORE_DRIVER", StoreDriverPostgres),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "secure_auth"),
		DBPort:      getEnv("DB_PORT", "5432"),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		RedisPass: getEnv("REDIS_PASSWORD", ""),
		RedisDB:   getEnvAsInt("REDIS_DB", 0),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),

		BcryptCost:         getEnvAsInt("BCRYPT_COST", 12),
		LockoutMaxAttempts: getEnvAsInt("LOCKOUT_MAX_ATTEMPTS", 5),
		LockoutDuration:    getEnvAsDuration("LOCKOUT_DURATION", 15*time.Minute),

		RateLimitMax:    int64(getEnvAsInt("RATE_LIMIT_MAX", 100)),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.StoreDriver)
	}

	if c.LockoutMaxAttempts < 1 {
		return fmt.Errorf("LOCKOUT_MAX_ATTEMPTS must be positive")
	}
	if c.LockoutDuration <= 0 {
		return fmt.Errorf("LOCKOUT_DURATION must be positive")
	}
	if c.RateLimitMax < 1 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}

	if c.IsProduction() {
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required in production")
		}
		if c.StoreDriver == StoreDriverMemory {
			return fmt.Errorf("STORE_DRIVER=memory is not allowed in production")
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
