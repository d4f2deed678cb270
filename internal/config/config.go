package config

import (
	"os"
	"strconv"
	"time"

	"shala/internal/cache"
	"shala/internal/database"
	"shala/internal/external"
	"shala/internal/messaging"
	"shala/internal/search"
)

// Config holds the process configuration, loaded from the environment.
// Business settings (booking cutoff, payment-method map) live in the
// database, not here.
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	SearchEnabled bool
	CacheEnabled  bool

	Database database.Config
	NATS     messaging.Config
	Valkey   cache.Config
	Search   search.Config
	Notify   external.NotifyConfig
	Storage  external.StorageConfig
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		SearchEnabled: getEnv("SEARCH_ENABLED", "false") == "true",
		CacheEnabled:  getEnv("CACHE_ENABLED", "true") == "true",

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "shala"),
			Password:           getEnv("DB_PASSWORD", "shala123"),
			DBName:             getEnv("DB_NAME", "shala"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
			StatementTimeoutMS: getEnvInt("DB_STATEMENT_TIMEOUT_MS", 5000),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "shala"),
			ClientID:  getEnv("NATS_CLIENT_ID", "shala-api"),
		},

		Valkey: cache.Config{
			Addr:          getEnv("VALKEY_ADDR", "localhost:6379"),
			Password:      getEnv("VALKEY_PASSWORD", ""),
			ListingTTLSec: getEnvInt("CATALOG_CACHE_TTL_SEC", 30),
		},

		Search: search.Config{
			URL:        getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
			Username:   getEnv("ELASTICSEARCH_USER", ""),
			Password:   getEnv("ELASTICSEARCH_PASSWORD", ""),
			Index:      getEnv("ELASTICSEARCH_INDEX", "shala-classes"),
			MaxRetries: getEnvInt("ELASTICSEARCH_MAX_RETRIES", 3),
		},

		Notify: external.NotifyConfig{
			BaseURL: getEnv("NOTIFY_GATEWAY_URL", "http://localhost:8090"),
			APIKey:  getEnv("NOTIFY_API_KEY", ""),
			Timeout: time.Duration(getEnvInt("NOTIFY_TIMEOUT_SEC", 30)) * time.Second,
		},

		Storage: external.StorageConfig{
			UploadBaseURL: getEnv("STORAGE_UPLOAD_URL", "http://localhost:9000/upload"),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_URL", "http://localhost:9000"),
			Bucket:        getEnv("STORAGE_BUCKET", "shala-slips"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
