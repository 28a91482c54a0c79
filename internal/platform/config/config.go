package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures process-level configuration. Values come from the
// environment so main stays lean.
type Config struct {
	Addr string

	PostgresURL string

	Redis RedisConfig

	// RateLimitPerMinute caps requests per client per minute; zero disables
	// limiting.
	RateLimitPerMinute int
}

// RedisConfig tunes the reference-data cache connection.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// GeographyCacheTTL bounds how long cached geography reference lookups are
// served before rereading the store; reference data is refreshed out of band.
var GeographyCacheTTL = 5 * time.Minute

// FromEnv builds a Config from environment variables with dev defaults.
func FromEnv() Config {
	addr := os.Getenv("EPIAUDIT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return Config{
		Addr:        addr,
		PostgresURL: os.Getenv("EPIAUDIT_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("EPIAUDIT_REDIS_URL"),
			PoolSize:     envInt("EPIAUDIT_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("EPIAUDIT_REDIS_MIN_IDLE", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		RateLimitPerMinute: envInt("EPIAUDIT_RATE_LIMIT", 0),
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
