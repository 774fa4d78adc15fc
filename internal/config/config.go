package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultDatabasePath = "data/shopping.db"
	defaultPort         = "8080"
	defaultLogMode      = "dev"
	defaultGeminiModel  = "gemini-1.5-flash"
	defaultCacheTTL     = 60 * time.Minute
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string
	Port         string
	LogMode      string

	// Result cache, disabled when RedisAddr is empty.
	RedisAddr string
	CacheTTL  time.Duration

	GeminiAPIKey string
	GeminiModel  string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables.
// Only malformed values are errors; commands check what they need with the Require methods.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		DatabasePath:       getEnv("DATABASE_PATH", defaultDatabasePath),
		Port:               getEnv("PORT", defaultPort),
		LogMode:            getEnv("LOG_MODE", defaultLogMode),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		CacheTTL:           defaultCacheTTL,
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", defaultGeminiModel),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
	}

	if v := os.Getenv("CACHE_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("CACHE_TTL_MINUTES must be a positive integer, got %q", v)
		}
		cfg.CacheTTL = time.Duration(minutes) * time.Minute
	}

	if v := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user id %q in TELEGRAM_ALLOWED_USER_IDS: %w", part, err)
			}
			cfg.TelegramAllowedUserIDs = append(cfg.TelegramAllowedUserIDs, id)
		}
	}

	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID %q: %w", v, err)
		}
		cfg.AdminTelegramID = id
	}

	return cfg, nil
}

// RequireTelegram checks the settings the Telegram bot cannot start without.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

// RequireGemini checks the settings needed to generate meal plans.
func (c *Config) RequireGemini() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
