package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	SessionStoreRedis  = "redis"
	SessionStoreBolt   = "bolt"
	SessionStoreMemory = "memory"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName      string
	Environment  string
	HTTP         HTTPConfig
	Storage      StorageConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Session      SessionConfig
	Notification NotificationConfig
	Context      ContextConfig
	Logger       LoggerConfig
	Migrations   MigrationsConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxConn      int
}

type StorageConfig struct {
	Driver string
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type SessionConfig struct {
	Store        string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
	Secret       string
	Issuer       string
	BoltPath     string
	SweepEvery   time.Duration
}

type NotificationConfig struct {
	Enabled    bool
	WebhookURL string
	Hour       int
	Minute     int
	Timezone   string
	Location   *time.Location
	Timeout    time.Duration
	BotName    string
	Icon       string
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "todo"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:      getInt("SERVER_MAX_CONN", 0),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getString("STORAGE_DRIVER", StorageDriverPostgres)),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "todo_db"),
			User:            getString("DB_USER", "todo_user"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			Store:        strings.ToLower(getString("SESSION_STORE", SessionStoreRedis)),
			TTL:          getDuration("SESSION_TTL", 24*time.Hour),
			CookieName:   getString("SESSION_COOKIE_NAME", "SESSION"),
			CookieSecure: getBool("SESSION_COOKIE_SECURE", false),
			Secret:       os.Getenv("SESSION_SECRET"),
			Issuer:       getString("SESSION_ISSUER", "todo"),
			BoltPath:     getString("SESSION_BOLT_PATH", "./data/sessions.db"),
			SweepEvery:   getDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		},
		Notification: NotificationConfig{
			Enabled:    getBool("NOTIFICATION_ENABLED", false),
			WebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
			Hour:       getInt("NOTIFICATION_TIME_HOUR", 9),
			Minute:     getInt("NOTIFICATION_TIME_MINUTE", 0),
			Timezone:   getString("NOTIFICATION_TIMEZONE", "Local"),
			Timeout:    getDuration("NOTIFICATION_TIMEOUT", 10*time.Second),
			BotName:    getString("NOTIFICATION_BOT_NAME", "TodoBot"),
			Icon:       getString("NOTIFICATION_ICON", ":calendar:"),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg.Database)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	var errs []error

	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER: unsupported driver %q", c.Storage.Driver))
	}

	switch c.Session.Store {
	case SessionStoreRedis, SessionStoreBolt, SessionStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE: unsupported store %q", c.Session.Store))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	n := &c.Notification
	if n.Hour < 0 || n.Hour > 23 {
		errs = append(errs, fmt.Errorf("NOTIFICATION_TIME_HOUR must be within 0..23, got %d", n.Hour))
	}
	if n.Minute < 0 || n.Minute > 59 {
		errs = append(errs, fmt.Errorf("NOTIFICATION_TIME_MINUTE must be within 0..59, got %d", n.Minute))
	}
	loc, err := time.LoadLocation(n.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("NOTIFICATION_TIMEZONE: %w", err))
	} else {
		n.Location = loc
	}
	if n.Enabled && strings.TrimSpace(n.WebhookURL) == "" {
		errs = append(errs, errors.New("SLACK_WEBHOOK_URL is required when NOTIFICATION_ENABLED is true"))
	}

	return errors.Join(errs...)
}

func buildPostgresURL(db DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		db.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
