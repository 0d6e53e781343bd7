package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Alias1177/AviatorPredictor/internal/analyze"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error fatal panic"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console" validate:"oneof=console json"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost" validate:"required"`
	DBPort     string `env:"DB_PORT" envDefault:"5432" validate:"required,numeric"`
	DBUser     string `env:"DB_USER" envDefault:"postgres" validate:"required"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"aviator" validate:"required"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`

	HistorySize    int    `env:"HISTORY_SIZE" envDefault:"100" validate:"min=10,max=1000"`
	PollInterval   int    `env:"POLL_INTERVAL" envDefault:"5" validate:"min=1"` // seconds
	FeedURL        string `env:"FEED_URL" validate:"omitempty,url"`
	RequestTimeout int    `env:"REQUEST_TIMEOUT" envDefault:"30" validate:"min=1"` // seconds
	RequestsPerSec int    `env:"REQUESTS_PER_SEC" envDefault:"5" validate:"min=1"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080" validate:"required"`

	RedisAddr     string `env:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0" validate:"min=0"`

	TelegramBotToken    string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID      int64  `env:"TELEGRAM_CHAT_ID" validate:"required_with=TelegramBotToken"`
	NotifyMinConfidence int    `env:"NOTIFY_MIN_CONFIDENCE" envDefault:"75" validate:"min=0,max=100"`

	Params analyze.Params
}

var validate = validator.New()

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	return FromEnv()
}

// FromEnv reads the configuration from the process environment
func FromEnv() (*Config, error) {
	var cfg Config

	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getEnvWithDefault("LOG_FORMAT", "console")

	cfg.DBHost = getEnvWithDefault("DB_HOST", "localhost")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = getEnvWithDefault("DB_USER", "postgres")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvWithDefault("DB_NAME", "aviator")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")

	cfg.HistorySize = getEnvIntWithDefault("HISTORY_SIZE", 100)
	cfg.PollInterval = getEnvIntWithDefault("POLL_INTERVAL", 5)
	cfg.FeedURL = os.Getenv("FEED_URL")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)

	cfg.HTTPAddr = getEnvWithDefault("HTTP_ADDR", ":8080")

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getEnvIntWithDefault("REDIS_DB", 0)

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0)
	cfg.NotifyMinConfidence = getEnvIntWithDefault("NOTIFY_MIN_CONFIDENCE", 75)

	defaults := analyze.DefaultParams()
	cfg.Params = analyze.Params{
		MovingAvgWindow: getEnvIntWithDefault("MOVING_AVG_WINDOW", defaults.MovingAvgWindow),
		LowThreshold:    getEnvFloatWithDefault("LOW_THRESHOLD", defaults.LowThreshold),
		DecayFactor:     getEnvFloatWithDefault("DECAY_FACTOR", defaults.DecayFactor),
		ConfidenceBase:  getEnvIntWithDefault("CONFIDENCE_BASE", defaults.ConfidenceBase),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field against its constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// PollEvery returns the poll interval as a duration
func (c *Config) PollEvery() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

// Timeout returns the request timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// TelegramEnabled reports whether alerts should be sent
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid number, using default")
	}
	return defaultValue
}
