package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/s30mocks")
	for _, key := range []string{"ENV", "REMINDER_BACKEND", "REMINDER_LEAD", "ADMIN_EMAILS"} {
		t.Setenv(key, "")
	}

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ReminderBackendPostgres, cfg.ReminderBackend)
	assert.Equal(t, 30*time.Minute, cfg.ReminderLead)
	assert.Equal(t, 30*time.Second, cfg.ReminderSweepInterval)
	assert.Equal(t, 10*time.Minute, cfg.PriceCacheTTL)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Empty(t, cfg.AdminEmails)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DB_DSN", "postgres://db/s30mocks")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REMINDER_BACKEND", "Redis")
	t.Setenv("REMINDER_LEAD", "45m")
	t.Setenv("ADMIN_EMAILS", "ops@s30mocks.test, lead@s30mocks.test")
	t.Setenv("ADMIN_TELEGRAM_IDS", "1001,1002")
	t.Setenv("NOTIFY_WORKERS", "4")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ReminderBackendRedis, cfg.ReminderBackend)
	assert.Equal(t, 45*time.Minute, cfg.ReminderLead)
	assert.Equal(t, []string{"ops@s30mocks.test", "lead@s30mocks.test"}, cfg.AdminEmails)
	assert.Equal(t, []int64{1001, 1002}, cfg.AdminTelegramIDs)
	assert.Equal(t, 4, cfg.NotifyWorkers)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DBDSN:                 "postgres://localhost/s30mocks",
			ReminderBackend:       ReminderBackendPostgres,
			ReminderLead:          30 * time.Minute,
			ReminderSweepInterval: time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing dsn", mutate: func(c *Config) { c.DBDSN = "" }, wantErr: "DB_DSN"},
		{name: "unknown backend", mutate: func(c *Config) { c.ReminderBackend = "kafka" }, wantErr: "REMINDER_BACKEND"},
		{name: "redis without address", mutate: func(c *Config) { c.ReminderBackend = ReminderBackendRedis }, wantErr: "REDIS_ADDR"},
		{name: "negative lead", mutate: func(c *Config) { c.ReminderLead = -time.Minute }, wantErr: "REMINDER_LEAD"},
		{name: "smtp without sender", mutate: func(c *Config) { c.SMTPHost = "smtp.test" }, wantErr: "SMTP_FROM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
