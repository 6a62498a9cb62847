package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

const (
	ListingStorePostgres = "postgres"
	ListingStoreMongo    = "mongo"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	AppEnv       string
	IsProduction bool
	LogLevel     string
	ProdOrigins  []string
	HTTPAddr     string

	DBDSN              string
	DBMaxConns         int
	DBStatementTimeout time.Duration

	JWTSecret         string
	JWTIssuer         string
	JWTAccessTokenTTL time.Duration

	CancellationWindow time.Duration
	ReadRetryAttempts  int

	ListingStore    string
	ListingCacheTTL time.Duration
	MongoURI        string
	MongoDB         string

	KafkaBrokers []string
	KafkaTopic   string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", slog.Any("err", err))
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	var err error
	cfg := &Config{}

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.IsProduction = cfg.AppEnv == PROD_STRING
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.ProdOrigins = splitList(getEnv("PROD_ORIGINS", ""))
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}
	if cfg.DBMaxConns, err = getEnvAsInt("DB_MAX_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.DBStatementTimeout, err = getEnvAsDuration("DB_STATEMENT_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	// JWT secret is required to verify bearer tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "")
	if cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}

	if cfg.CancellationWindow, err = getEnvAsDuration("CANCELLATION_WINDOW", 48*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ReadRetryAttempts, err = getEnvAsInt("READ_RETRY_ATTEMPTS", 3); err != nil {
		return nil, err
	}

	cfg.ListingStore = strings.ToLower(getEnv("LISTING_STORE", ListingStorePostgres))
	switch cfg.ListingStore {
	case ListingStorePostgres:
	case ListingStoreMongo:
		cfg.MongoURI = os.Getenv("MONGO_URI")
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required when LISTING_STORE=mongo")
		}
		cfg.MongoDB = getEnv("MONGO_DB", "rental")
	default:
		return nil, fmt.Errorf("invalid LISTING_STORE %q", cfg.ListingStore)
	}
	if cfg.ListingCacheTTL, err = getEnvAsDuration("LISTING_CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}

	cfg.KafkaBrokers = splitList(getEnv("KAFKA_BROKERS", ""))
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "booking-events")

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}
	return val, nil
}

// getEnvAsDuration parses values such as "15m" or "48h".
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("env %s must not be negative", key)
	}
	return val, nil
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
