// Package config provides configuration for the storefront.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the storefront configuration.
type Config struct {
	// Server settings
	HTTPPort         int
	Environment      string
	CORSAllowOrigins []string

	// Database
	DatabaseDriver string
	DatabaseURL    string
	DBMaxOpenConns int

	// Product cache (disabled when RedisAddr is empty)
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ProductCacheTTL time.Duration

	// Cart session cookie
	SessionCookieName string
	SessionTTL        time.Duration

	// Checkout handoff
	WhatsAppNumber string
	StoreName      string

	// Chat socket
	ChatIdleTimeout    time.Duration
	ChatReadTimeout    time.Duration
	ChatWriteTimeout   time.Duration
	ChatPingInterval   time.Duration
	ChatMaxMessageSize int64

	// Order status policy (rego file, default policy when empty)
	OrderPolicyFile string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:           getEnvInt("HTTP_PORT", 8080),
		Environment:        getEnv("APP_ENV", "development"),
		CORSAllowOrigins:   splitList(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		DatabaseDriver:     getEnv("DATABASE_DRIVER", "sqlite3"),
		DatabaseURL:        getEnv("DATABASE_URL", "file:giftchoice.db?mode=rwc&_journal_mode=WAL"),
		DBMaxOpenConns:     getEnvInt("DB_MAX_OPEN_CONNS", 10),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		ProductCacheTTL:    time.Duration(getEnvInt("PRODUCT_CACHE_TTL_SEC", 300)) * time.Second,
		SessionCookieName:  getEnv("SESSION_COOKIE", "gc_session"),
		SessionTTL:         time.Duration(getEnvInt("SESSION_TTL_DAYS", 30)) * 24 * time.Hour,
		WhatsAppNumber:     getEnv("WHATSAPP_NUMBER", "919999999999"),
		StoreName:          getEnv("STORE_NAME", "GIFT CHOICE"),
		ChatIdleTimeout:    time.Duration(getEnvInt("CHAT_IDLE_TIMEOUT_MS", 60000)) * time.Millisecond,
		ChatReadTimeout:    time.Duration(getEnvInt("CHAT_READ_TIMEOUT_MS", 60000)) * time.Millisecond,
		ChatWriteTimeout:   time.Duration(getEnvInt("CHAT_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ChatPingInterval:   time.Duration(getEnvInt("CHAT_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		ChatMaxMessageSize: int64(getEnvInt("CHAT_MAX_MESSAGE_SIZE", 4096)),
		OrderPolicyFile:    getEnv("ORDER_POLICY_FILE", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

// Production reports whether the service runs with production hardening
// (secure cookies, no stack traces in error bodies).
func (c *Config) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
