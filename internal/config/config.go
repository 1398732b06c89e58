package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment   string `mapstructure:"ENV"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	DBDSN         string `mapstructure:"DB_DSN"`
	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`

	// Redis serves the price cache and the asynq reminder queue
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int           `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int           `mapstructure:"REDIS_QUEUE_DB"`
	PriceCacheTTL time.Duration `mapstructure:"PRICE_CACHE_TTL"`

	ReminderBackend       string        `mapstructure:"REMINDER_BACKEND"`
	ReminderLead          time.Duration `mapstructure:"REMINDER_LEAD"`
	ReminderSweepInterval time.Duration `mapstructure:"REMINDER_SWEEP_INTERVAL"`
	ReminderWorkers       int           `mapstructure:"REMINDER_WORKERS"`

	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	AMQPURL      string `mapstructure:"AMQP_URL"`
	AMQPExchange string `mapstructure:"AMQP_EXCHANGE"`

	AdminEmails      []string `mapstructure:"ADMIN_EMAILS"`
	AdminTelegramIDs []int64  `mapstructure:"ADMIN_TELEGRAM_IDS"`

	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	MeetingBaseURL  string `mapstructure:"MEETING_BASE_URL"`
	NotifyWorkers   int    `mapstructure:"NOTIFY_WORKERS"`
	NotifyQueueSize int    `mapstructure:"NOTIFY_QUEUE_SIZE"`
}

const (
	ReminderBackendPostgres = "postgres"
	ReminderBackendRedis    = "redis"
)

var defaults = map[string]any{
	"ENV":                     "development",
	"LOG_LEVEL":               "",
	"DB_DSN":                  "",
	"MIGRATIONS_DIR":          "",
	"REDIS_ADDR":              "",
	"REDIS_PASSWORD":          "",
	"REDIS_CACHE_DB":          0,
	"REDIS_QUEUE_DB":          1,
	"PRICE_CACHE_TTL":         "10m",
	"REMINDER_BACKEND":        ReminderBackendPostgres,
	"REMINDER_LEAD":           "30m",
	"REMINDER_SWEEP_INTERVAL": "30s",
	"REMINDER_WORKERS":        5,
	"TELEGRAM_TOKEN":          "",
	"SMTP_HOST":               "",
	"SMTP_PORT":               587,
	"SMTP_USERNAME":           "",
	"SMTP_PASSWORD":           "",
	"SMTP_FROM":               "",
	"AMQP_URL":                "",
	"AMQP_EXCHANGE":           "s30mocks.events",
	"ADMIN_EMAILS":            "",
	"ADMIN_TELEGRAM_IDS":      "",
	"CLOUDINARY_CLOUD_NAME":   "",
	"CLOUDINARY_API_KEY":      "",
	"CLOUDINARY_API_SECRET":   "",
	"MEETING_BASE_URL":        "https://meet.jit.si/s30mocks-",
	"NOTIFY_WORKERS":          2,
	"NOTIFY_QUEUE_SIZE":       256,
}

// Load reads .env when present, then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println("Loaded configuration from .env file")
	}

	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.AdminEmails = compact(cfg.AdminEmails)
	cfg.ReminderBackend = strings.ToLower(strings.TrimSpace(cfg.ReminderBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields and enum values
func (c *Config) Validate() error {
	var errs []error

	if c.DBDSN == "" {
		errs = append(errs, errors.New("DB_DSN is required but not set"))
	}

	switch c.ReminderBackend {
	case ReminderBackendPostgres:
	case ReminderBackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when REMINDER_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("REMINDER_BACKEND must be postgres or redis, got %q", c.ReminderBackend))
	}

	if c.ReminderLead < 0 {
		errs = append(errs, errors.New("REMINDER_LEAD must not be negative"))
	}
	if c.ReminderSweepInterval <= 0 {
		errs = append(errs, errors.New("REMINDER_SWEEP_INTERVAL must be positive"))
	}
	if c.SMTPHost != "" && c.SMTPFrom == "" {
		errs = append(errs, errors.New("SMTP_FROM is required when SMTP_HOST is set"))
	}

	return errors.Join(errs...)
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
