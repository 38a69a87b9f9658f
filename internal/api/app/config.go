package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/routefleet/routerman/pkg/jwtx"
)

type Config struct {
	JWTSecret      string // Required: HS256 signing secret, at least 32 bytes
	Issuer         string // Issuer claim for signed tokens (default: routerman)
	SecretStoreKey string // Required: key material for credential encryption

	GenericAppToken string // Optional: fixed shared app credential
	SuperUserToken  string // Optional: fixed super-admin opaque token
	AdminUsername   string // Seeded admin account name (default: admin)
	AdminPassword   string // Optional: seeded admin password (generated when empty)

	DatabaseFile         string        // Path to SQLite database file (default: ./routerman.db)
	PepperFile           string        // Path to password-hashing pepper file (default: ./pepper)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	TelemetryRetention   time.Duration // Telemetry retention window (default: 720h)
}

// LoadConfig reads configuration from the environment, with a best-effort
// .env load for local development.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		JWTSecret:      os.Getenv("ROUTERMAN_JWT_SECRET"),
		Issuer:         getEnvOrDefault("ROUTERMAN_ISSUER", "routerman"),
		SecretStoreKey: os.Getenv("ROUTERMAN_SECRET_STORE_KEY"),

		GenericAppToken: os.Getenv("ROUTERMAN_GENERIC_APP_TOKEN"),
		SuperUserToken:  os.Getenv("ROUTERMAN_SUPER_USER_TOKEN"),
		AdminUsername:   getEnvOrDefault("ROUTERMAN_ADMIN_USERNAME", "admin"),
		AdminPassword:   os.Getenv("ROUTERMAN_ADMIN_PASSWORD"),

		DatabaseFile:         getEnvOrDefault("ROUTERMAN_DATABASE_FILE", "routerman.db"),
		PepperFile:           getEnvOrDefault("ROUTERMAN_PEPPER_FILE", "pepper"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("ROUTERMAN_PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("ROUTERMAN_SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("ROUTERMAN_HOUSEKEEPING_INTERVAL", time.Hour),
		TelemetryRetention:   getEnvDurationOrDefault("ROUTERMAN_TELEMETRY_RETENTION", 30*24*time.Hour),
	}
}

// Validate rejects configurations the service must not start with. A short
// JWT secret is a configuration error, never something to pad or truncate.
func (cfg Config) Validate() error {
	if len(cfg.JWTSecret) < jwtx.MinSecretSize {
		return errors.New("ROUTERMAN_JWT_SECRET must be set and at least 32 bytes")
	}
	if cfg.SecretStoreKey == "" {
		return errors.New("ROUTERMAN_SECRET_STORE_KEY must be set")
	}
	return nil
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
