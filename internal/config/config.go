package config

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	StoreBackendHTTP     = "http"
	StoreBackendSQLite   = "sqlite"
	StoreBackendFirebase = "firebase"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv string

	StoreBackend   string
	StoreURL       string
	StorePath      string
	StoreAuthToken string
	StoreTimeout   time.Duration

	// FirebaseCredentialsFile is a service account JSON for the firebase
	// backend.
	FirebaseCredentialsFile string

	DBPath   string
	DBDriver string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	SessionTTL    time.Duration

	GRPCPort              int
	GRPCReflectionEnabled bool
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	backend := getEnv("STORE_BACKEND", StoreBackendHTTP)
	switch backend {
	case StoreBackendSQLite, StoreBackendFirebase:
	default:
		backend = StoreBackendHTTP
	}

	return &Config{
		AppEnv:                  getEnv("APP_ENV", "development"),
		StoreBackend:            backend,
		StoreURL:                getEnv("STORE_URL", "http://localhost:9000"),
		StorePath:               getEnv("STORE_PATH", "reviews"),
		StoreAuthToken:          getEnv("STORE_AUTH_TOKEN", ""),
		StoreTimeout:            getDuration("STORE_TIMEOUT", 10*time.Second),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		DBPath:                  getEnv("DB_PATH", "./data/reviews.db"),
		DBDriver:                getEnv("DB_DRIVER", "sqlite3"),
		RedisAddr:               lookupEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		RedisDB:                 getInt("REDIS_DB", 0),
		CacheTTL:                getDuration("CACHE_TTL", 10*time.Minute),
		SessionTTL:              getDuration("SESSION_TTL", 30*time.Minute),
		GRPCPort:                getInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled:   getBool("GRPC_REFLECTION_ENABLED", false),
	}
}

// CacheEnabled reports whether a redis address is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// lookupEnv honors a variable that is set to the empty string.
func lookupEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
