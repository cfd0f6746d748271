package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required,notEmpty"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// Payment: Payeer
	PayeerShopID      string          `env:"PAYEER_SHOP_ID,required,notEmpty"`
	PayeerSecretKey   string          `env:"PAYEER_SECRET_KEY,required,notEmpty"`
	PayeerMerchantURL string          `env:"PAYEER_MERCHANT_URL" envDefault:"https://payeer.com/merchant/"`
	PayeerTrustedIPs  []string        `env:"PAYEER_TRUSTED_IPS" envSeparator:","`
	CheckPrice        decimal.Decimal `env:"CHECK_PRICE" envDefault:"0.32"`
	CheckCurrency     string          `env:"CHECK_CURRENCY" envDefault:"USD"`

	// IMEI lookup
	ImeiAPIURL  string `env:"IMEI_API_URL" envDefault:"https://proimei.info/en/prepaid/api"`
	ImeiAPIKey  string `env:"IMEI_API_KEY,required,notEmpty"`
	ImeiChecker string `env:"IMEI_CHECKER" envDefault:"simlock2"`

	// Admin
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Server
	Port        int    `env:"PORT" envDefault:"3000"`
	BehindProxy bool   `env:"BEHIND_PROXY" envDefault:"false"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Telegram logging
	LogTelegramChatID int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError     int   `env:"LOG_TOPIC_ERROR"`
	LogTopicPayment   int   `env:"LOG_TOPIC_PAYMENT"`
}

// Load reads an optional .env file and then parses the environment.
// Variables already set in the environment win over .env values.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !c.CheckPrice.IsPositive() {
		return fmt.Errorf("CHECK_PRICE must be positive, got %s", c.CheckPrice)
	}
	if len(c.CheckCurrency) != 3 {
		return fmt.Errorf("CHECK_CURRENCY must be a 3-letter code, got %q", c.CheckCurrency)
	}
	c.CheckCurrency = strings.ToUpper(c.CheckCurrency)
	return nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
