package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env             string
	HTTPPort        string
	StoreBackend    string // "postgres" or "file"
	DatabaseURL     string
	DBMaxConns      int
	DataFile        string
	RedisAddr       string // optional; empty disables the calendar cache
	AdminUsername   string
	AdminPassword   string
	SessionSecret   string
	SessionTTL      time.Duration
	CacheTTL        time.Duration
	RateLimitPerMin int
}

// Load returns application config populated from environment variables.
// The admin credentials and session secret have no defaults: the process
// refuses to start without them. DATABASE_URL is required for the postgres
// backend, DATA_FILE always has a default so the file backend can run bare.
func Load() App {
	_ = godotenv.Load()

	cfg := App{
		Env:             getEnv("APP_ENV", "dev"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		StoreBackend:    getEnv("STORE_BACKEND", "postgres"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DBMaxConns:      intEnv("DB_MAX_CONNS", 10),
		DataFile:        getEnv("DATA_FILE", "attendance.json"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		AdminUsername:   mustEnv("ADMIN_USERNAME"),
		AdminPassword:   mustEnv("ADMIN_PASSWORD"),
		SessionSecret:   mustEnv("SESSION_SECRET"),
		SessionTTL:      durationEnv("SESSION_TTL", 7*24*time.Hour),
		CacheTTL:        durationEnv("CACHE_TTL", time.Minute),
		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 120),
	}

	switch cfg.StoreBackend {
	case "postgres":
		if cfg.DatabaseURL == "" {
			log.Fatal("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	case "file":
	default:
		log.Fatalf("unknown STORE_BACKEND %q (want postgres or file)", cfg.StoreBackend)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func mustEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("missing required environment variable %s", key)
	}
	return val
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
