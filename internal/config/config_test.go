package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "DB_PASSWORD", "STORAGE_DRIVER", "SESSION_STORE", "NOTIFICATION_ENABLED", "SERVER_HOST", "SERVER_PORT"} {
		t.Setenv(key, "")
	}
	t.Setenv("NOTIFICATION_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "SESSION", cfg.Session.CookieName)
	assert.False(t, cfg.Notification.Enabled)
	assert.Equal(t, 9, cfg.Notification.Hour)
	assert.Equal(t, 0, cfg.Notification.Minute)
	assert.Equal(t, time.UTC, cfg.Notification.Location)
	assert.Equal(t, "TodoBot", cfg.Notification.BotName)
	assert.Equal(t, ":calendar:", cfg.Notification.Icon)
	assert.Equal(t, "postgres://todo_user:@localhost:5432/todo_db?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("SESSION_STORE", "bolt")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("NOTIFICATION_ENABLED", "true")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.example.com/x")
	t.Setenv("NOTIFICATION_TIME_HOUR", "18")
	t.Setenv("NOTIFICATION_TIME_MINUTE", "30")
	t.Setenv("NOTIFICATION_TIMEZONE", "Asia/Tokyo")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, SessionStoreBolt, cfg.Session.Store)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Notification.Enabled)
	assert.Equal(t, 18, cfg.Notification.Hour)
	assert.Equal(t, 30, cfg.Notification.Minute)
	assert.Equal(t, "Asia/Tokyo", cfg.Notification.Location.String())
	assert.Equal(t, 7*time.Second, cfg.Context.RequestTimeout)
}

func TestLoad_Validation(t *testing.T) {
	cases := map[string]map[string]string{
		"hour out of range":    {"NOTIFICATION_TIME_HOUR": "24"},
		"negative hour":        {"NOTIFICATION_TIME_HOUR": "-1"},
		"minute out of range":  {"NOTIFICATION_TIME_MINUTE": "60"},
		"unknown timezone":     {"NOTIFICATION_TIMEZONE": "Mars/Olympus"},
		"unknown driver":       {"STORAGE_DRIVER": "sqlite"},
		"unknown store":        {"SESSION_STORE": "memcached"},
		"missing webhook":      {"NOTIFICATION_ENABLED": "true", "SLACK_WEBHOOK_URL": ""},
		"non-positive session": {"SESSION_TTL": "-1h"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("NOTIFICATION_TIMEZONE", "UTC")
			for k, v := range env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
