package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

var (
	// ErrInvalidConfig возвращается, когда значения конфигурации некорректны
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса синхронизации бронирований водителя
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Backend   BackendConfig   `toml:"backend"`
	Session   SessionConfig   `toml:"session"`
	Polling   PollingConfig   `toml:"polling"`
	Actions   ActionsConfig   `toml:"actions"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Journal   JournalConfig   `toml:"journal"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

// ServerConfig локальный HTTP API для слоя представления
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // seconds
	WriteTimeout    int `toml:"write_timeout"`    // seconds
	IdleTimeout     int `toml:"idle_timeout"`     // seconds
	ShutdownTimeout int `toml:"shutdown_timeout"` // seconds
}

// BackendConfig REST backend маркетплейса
type BackendConfig struct {
	URL          string `toml:"url"`
	Timeout      int    `toml:"timeout"` // seconds, transport default
	BookingsPath string `toml:"bookings_path"`
	ApprovePath  string `toml:"approve_path"`
	RejectPath   string `toml:"reject_path"`
}

// SessionConfig идентичность водителя из окружающей сессии
type SessionConfig struct {
	DriverID      string `toml:"driver_id"`
	Token         string `toml:"token"`
	DriverIDClaim string `toml:"driver_id_claim"`
}

// PollingConfig параметры опроса бронирований
type PollingConfig struct {
	IntervalMs     int `toml:"interval_ms"`
	FetchTimeoutMs int `toml:"fetch_timeout_ms"`
}

// ActionsConfig параметры действий водителя
type ActionsConfig struct {
	TimeoutMs int `toml:"timeout_ms"`
	// AssumeDefaultStatus включает подстановку APPROVED/CANCELLED,
	// если backend не вернул поле status в ответе на действие
	AssumeDefaultStatus bool `toml:"assume_default_status"`
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// JournalConfig журнал действий водителя в PostgreSQL
type JournalConfig struct {
	Enabled         bool   `toml:"enabled"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // seconds
}

// RateLimitConfig ограничение ручного обновления
type RateLimitConfig struct {
	Refresh  string `toml:"refresh"` // формат ulule/limiter, например "6-M"
	RedisURL string `toml:"redis_url"`
}

// DSN возвращает строку подключения к PostgreSQL
func (c JournalConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func (c PollingConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

func (c PollingConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMs) * time.Millisecond
}

func (c ActionsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Load загружает конфигурацию из TOML файла.
// Значения из окружения (и .env файла, если он есть) перекрывают значения из файла.
func Load(path string) (*Config, error) {
	// .env опционален
	_ = godotenv.Load()

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse разбирает конфигурацию из строки (без чтения окружения)
func Parse(data string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		key    string
		target *string
	}{
		{"BACKEND_URL", &c.Backend.URL},
		{"SESSION_TOKEN", &c.Session.Token},
		{"DRIVER_ID", &c.Session.DriverID},
		{"JOURNAL_PASSWORD", &c.Journal.Password},
		{"REDIS_URL", &c.RateLimit.RedisURL},
		{"LOG_LEVEL", &c.Logs.Level},
	}

	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.target = v
		}
	}
}

func (c *Config) applyDefaults() {
	setInt := func(v *int, def int) {
		if *v == 0 {
			*v = def
		}
	}
	setString := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}

	setInt(&c.Server.HTTPPort, 8090)
	setInt(&c.Server.ReadTimeout, 15)
	setInt(&c.Server.WriteTimeout, 30)
	setInt(&c.Server.IdleTimeout, 60)
	setInt(&c.Server.ShutdownTimeout, 10)

	setInt(&c.Backend.Timeout, 30)
	setString(&c.Backend.BookingsPath, "/api/driver/{driverId}/bookings")
	setString(&c.Backend.ApprovePath, "/api/bookings/{bookingId}/approve/{driverId}")
	setString(&c.Backend.RejectPath, "/api/bookings/{bookingId}/reject/{driverId}")

	setString(&c.Session.DriverIDClaim, "driverId")

	setInt(&c.Polling.IntervalMs, 10000)
	setInt(&c.Polling.FetchTimeoutMs, c.Backend.Timeout*1000)
	setInt(&c.Actions.TimeoutMs, 10000)

	setString(&c.Logs.Level, "info")

	setString(&c.Metrics.Path, "/metrics")
	setString(&c.Metrics.ServiceName, "driver_booking_sync")

	setInt(&c.Journal.Port, 5432)
	setString(&c.Journal.SSLMode, "disable")
	setInt(&c.Journal.MaxOpenConns, 5)
	setInt(&c.Journal.MaxIdleConns, 2)
	setInt(&c.Journal.ConnMaxLifetime, 300)

	setString(&c.RateLimit.Refresh, "6-M")
}

func (c *Config) validate() error {
	switch {
	case c.Backend.URL == "":
		return fmt.Errorf("%w: backend.url is required", ErrInvalidConfig)
	case c.Session.DriverID == "" && c.Session.Token == "":
		return fmt.Errorf("%w: session.driver_id or session.token is required", ErrInvalidConfig)
	case c.Polling.IntervalMs < 0 || c.Polling.FetchTimeoutMs < 0:
		return fmt.Errorf("%w: polling values must be positive", ErrInvalidConfig)
	case c.Actions.TimeoutMs < 0:
		return fmt.Errorf("%w: actions.timeout_ms must be positive", ErrInvalidConfig)
	case c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535:
		return fmt.Errorf("%w: server.http_port out of range", ErrInvalidConfig)
	case c.Journal.Enabled && (c.Journal.Host == "" || c.Journal.DBName == ""):
		return fmt.Errorf("%w: journal.host and journal.dbname are required when journal is enabled", ErrInvalidConfig)
	}
	return nil
}
