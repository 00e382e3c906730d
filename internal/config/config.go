package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Server
	Port               int      `env:"PORT" envDefault:"3000"`
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	AllowedOrigins     []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Chat completions (OpenAI-compatible; OpenRouter by default)
	OpenRouterKey     string  `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string  `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	ChatModel         string  `env:"CHAT_MODEL" envDefault:"openai/gpt-4o-mini"`
	ChatTemperature   float32 `env:"CHAT_TEMPERATURE" envDefault:"0.7"`

	// Recommendations
	GeminiAPIKey           string   `env:"GEMINI_API_KEY"`
	GeminiModel            string   `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	RecommendationKeywords []string `env:"RECOMMENDATION_KEYWORDS" envSeparator:","`

	// In-flight reply gate; memory when empty
	RedisURL string `env:"REDIS_URL"`

	// Telegram sales notifications
	TelegramBotToken    string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID      int64  `env:"TELEGRAM_CHAT_ID"`
	TelegramTopicQuotes int    `env:"TELEGRAM_TOPIC_QUOTES"`
}

func Load() (*Config, error) {
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
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for store driver %q", c.StoreDriver)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	return nil
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
	}
	return slog.LevelInfo
}

func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// TriggerKeywords returns the configured recommendation keywords or the defaults.
func (c *Config) TriggerKeywords() []string {
	var out []string
	for _, k := range c.RecommendationKeywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return DefaultTriggerKeywords
	}
	return out
}
