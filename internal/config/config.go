package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// EncryptionKey is the process-wide secret the per-message key is
	// derived from. Messages are sealed at rest; an empty key disables
	// sealing and stores plaintext.
	EncryptionKey string

	SessionLifetime time.Duration
	AuthTimeout     time.Duration

	RateLimitAuth     int
	RateLimitMessages int
	RateLimitWindow   time.Duration

	HistoryPageSize  int
	MaxMessageLength int
}

func Load() *Config {
	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "banter"),
		DBPassword: getEnv("DB_PASSWORD", "banter_dev_password"),
		DBName:     getEnv("DB_NAME", "banter"),

		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),

		SessionLifetime: getEnvSeconds("SESSION_LIFETIME", 3600),
		AuthTimeout:     getEnvSeconds("AUTH_TIMEOUT", 30),

		RateLimitAuth:     getEnvInt("RATE_LIMIT_AUTH", 10),
		RateLimitMessages: getEnvInt("RATE_LIMIT_MESSAGES", 60),
		RateLimitWindow:   getEnvSeconds("RATE_LIMIT_WINDOW", 60),

		HistoryPageSize:  getEnvInt("HISTORY_PAGE_SIZE", 50),
		MaxMessageLength: getEnvInt("MAX_MESSAGE_LENGTH", 2000),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}
