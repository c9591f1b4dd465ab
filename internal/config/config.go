package config

import (
	"fmt"
	"os"
	"time"

	"failboard/internal/models"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL string
	Port        string
	UseMockDB   bool

	// Web API auth
	JWTSecret string
	TokenTTL  time.Duration

	// Telegram bot. Empty token disables the bot and runs API-only.
	TelegramToken string
	WebhookMode   bool // if true, updates arrive via POST /bot/webhook
	WebhookURL    string

	// Initial status of newly created posts, per front-end. The two
	// observed product variants disagree (API submits for review, bot
	// keeps a private draft), so both are explicit settings.
	APIInitialStatus models.PostStatus
	BotInitialStatus models.PostStatus
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.UseMockDB = os.Getenv("USE_MOCK_DB") == "true"
	if cfg.DatabaseURL == "" && !cfg.UseMockDB {
		return nil, fmt.Errorf("DATABASE_URL is required unless USE_MOCK_DB=true")
	}

	cfg.Port = os.Getenv("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg.TokenTTL = 24 * time.Hour
	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = d
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if cfg.WebhookMode {
		cfg.WebhookURL = os.Getenv("WEBHOOK_URL")
		if cfg.WebhookURL == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}

	var err error
	cfg.APIInitialStatus, err = statusFromEnv("API_INITIAL_STATUS", models.StatusChecking)
	if err != nil {
		return nil, err
	}
	cfg.BotInitialStatus, err = statusFromEnv("BOT_INITIAL_STATUS", models.StatusDraft)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func statusFromEnv(key string, fallback models.PostStatus) (models.PostStatus, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	status := models.PostStatus(raw)
	if !status.Valid() {
		return "", fmt.Errorf("invalid %s: %q", key, raw)
	}
	return status, nil
}
