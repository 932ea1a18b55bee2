package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Oracle credential placeholder shipped in example env files
const PlaceholderAPIKey = "your_gemini_api_key_here"

// Config holds application configuration
type Config struct {
	Port     string
	LogLevel string

	JWTSecret  string
	SessionTTL time.Duration

	OracleProvider  string
	OracleAPIKey    string
	OracleModel     string
	OracleBaseURL   string
	OracleTimeout   time.Duration
	OracleMaxTokens int64

	MaxDocumentBytes int64

	StoreBackend      string
	DBConn            string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	SnapshotRetention time.Duration

	SessionIdleTTL time.Duration
	SweepSchedule  string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from environment variables, after merging any
// .env.local / .env file found in the working directory
func NewConfig() (*Config, error) {
	loadEnvFiles(".env.local", ".env")

	provider := strings.ToLower(getEnv("ORACLE_PROVIDER", "gemini"))
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		SessionTTL: getDuration("SESSION_TTL", 24*time.Hour),

		OracleProvider:  provider,
		OracleAPIKey:    getEnv("ORACLE_API_KEY", oracleKeyFromProvider(provider)),
		OracleModel:     getEnv("ORACLE_MODEL", ""),
		OracleBaseURL:   getEnv("ORACLE_BASE_URL", ""),
		OracleTimeout:   getDuration("ORACLE_TIMEOUT", 90*time.Second),
		OracleMaxTokens: int64(getInt("ORACLE_MAX_TOKENS", 8192)),

		MaxDocumentBytes: int64(getInt("MAX_DOCUMENT_BYTES", 20*1024*1024)),

		StoreBackend:      strings.ToLower(getEnv("STORE_BACKEND", "memory")),
		DBConn:            getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=trust sslmode=disable"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getInt("REDIS_DB", 0),
		SnapshotRetention: getDuration("SNAPSHOT_RETENTION", 0),

		SessionIdleTTL: getDuration("SESSION_IDLE_TTL", 2*time.Hour),
		SweepSchedule:  getEnv("SWEEP_SCHEDULE", "@every 10m"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "reports@credzo.ai"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.OracleProvider {
	case "gemini", "anthropic", "openai":
	default:
		return nil, fmt.Errorf("unknown ORACLE_PROVIDER %q", cfg.OracleProvider)
	}
	switch cfg.StoreBackend {
	case "memory":
	case "postgres":
		if cfg.DBConn == "" {
			return nil, fmt.Errorf("DB_CONN is required for the postgres store")
		}
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.OracleTimeout <= 0 {
		return nil, fmt.Errorf("ORACLE_TIMEOUT must be positive")
	}
	if cfg.MaxDocumentBytes <= 0 {
		return nil, fmt.Errorf("MAX_DOCUMENT_BYTES must be positive")
	}

	// A missing oracle key surfaces per request as a configuration error
	return cfg, nil
}

// SMTPEnabled reports whether report notifications can be sent
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func loadEnvFiles(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			// Load never overrides variables that are already set
			_ = godotenv.Load(p)
		}
	}
}

func oracleKeyFromProvider(provider string) string {
	switch provider {
	case "anthropic":
		return getEnv("ANTHROPIC_API_KEY", "")
	case "openai":
		return getEnv("OPENAI_API_KEY", "")
	default:
		return getEnv("GEMINI_API_KEY", "")
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return v
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return d
}
