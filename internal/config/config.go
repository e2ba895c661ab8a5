package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/flocklink/flocklink/pkg/auth"
)

// devSessionSecret is the deterministic fallback signing key for
// non-production environments. Production deployments must configure
// SESSION_SECRET; Load fails loudly if they do not.
const devSessionSecret = "flocklink-dev-session-secret-do-not-use-in-prod"

// Config holds application configuration.
type Config struct {
	// Environment
	Env string

	// Server
	ServerAddr string
	ServerPort int

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Session
	SessionSecret    string
	SessionIssuer    string
	SessionTTL       time.Duration
	UsingDevSecret   bool
	SystemAdminEmail string

	// Optional revocation denylist
	RedisURL string

	// Optional audit event stream
	KafkaBroker     string
	KafkaAuditTopic string

	// HTTP limits
	MaxRequestBodySize    int64
	AuthRequestsPerMinute int
	APIRequestsPerMinute  int
	RateLimitEnabled      bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Env: getEnv("ENV", "development"),

		// Server defaults
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		// Database defaults (matches podman setup: make postgres-start)
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 25432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "flocklink"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Session defaults
		SessionSecret:    getEnv("SESSION_SECRET", ""),
		SessionIssuer:    getEnv("SESSION_ISSUER", "flocklink"),
		SessionTTL:       getEnvDuration("SESSION_TTL", auth.DefaultSessionTTL),
		SystemAdminEmail: getEnv("SYSTEM_ADMIN_EMAIL", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		KafkaBroker:     getEnv("KAFKA_BROKER", ""),
		KafkaAuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "flocklink.audit"),

		MaxRequestBodySize:    getEnvInt64("MAX_REQUEST_BODY_SIZE", 1<<20),
		AuthRequestsPerMinute: getEnvInt("AUTH_REQUESTS_PER_MINUTE", 10),
		APIRequestsPerMinute:  getEnvInt("API_REQUESTS_PER_MINUTE", 120),
		RateLimitEnabled:      getEnvBool("RATE_LIMIT_ENABLED", true),
	}

	if cfg.SessionSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("SESSION_SECRET is required in production")
		}
		cfg.SessionSecret = devSessionSecret
		cfg.UsingDevSecret = true
	}

	return cfg, nil
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// HasKafka returns true if the audit event stream is configured.
func (c *Config) HasKafka() bool {
	return c.KafkaBroker != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
