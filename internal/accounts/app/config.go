package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	JWTSecret string        // Required: HMAC secret for signing bearer tokens
	JWTIssuer string        // Optional: issuer claim for tokens (default: accounts)
	JWTTTL    time.Duration // Optional: token lifetime (default: 24h)

	DatabaseFile string // Optional: path to SQLite database file (default: ./accounts.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	CleanupHour      int           // Optional: local hour of day the stale-account sweep runs (default: 1)
	AccountRetention time.Duration // Optional: how long unactivated accounts are kept (default: 72h)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		JWTSecret: os.Getenv("ACCOUNTS_JWT_SECRET"),
		JWTIssuer: getEnvOrDefault("ACCOUNTS_JWT_ISSUER", "accounts"),
		JWTTTL:    getEnvDurationOrDefault("ACCOUNTS_JWT_TTL", 24*time.Hour),

		DatabaseFile: getEnvOrDefault("ACCOUNTS_DATABASE_FILE", "accounts.db"),
		PepperFile:   getEnvOrDefault("ACCOUNTS_PEPPER_FILE", "pepper"),

		CleanupHour:      getEnvIntOrDefault("ACCOUNTS_CLEANUP_HOUR", 1),
		AccountRetention: getEnvDurationOrDefault("ACCOUNTS_RETENTION", 72*time.Hour),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
