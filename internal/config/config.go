package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Redis     RedisConfig     `toml:"redis"`
	Estimator EstimatorConfig `toml:"estimator"`
	Slots     SlotsConfig     `toml:"slots"`
	Mailer    MailerConfig    `toml:"mailer"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения к PostgreSQL
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// RedisConfig настройки redis-кэша Queue View.
// TTLSeconds - явно допустимое устаревание кэшированной проекции.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// EstimatorConfig настройки оценки времени ожидания
type EstimatorConfig struct {
	// ModelPath путь к JSON-экспорту обученной модели.
	// Пустой путь - деплой без модели, работает только fallback.
	ModelPath string `toml:"model_path"`

	// ActiveCounters число работающих окон обслуживания (фича модели)
	ActiveCounters int `toml:"active_counters"`
}

// SlotsConfig настройки генерации окна слотов
type SlotsConfig struct {
	WindowDays      int    `toml:"window_days"`
	OpenHour        int    `toml:"open_hour"`
	CloseHour       int    `toml:"close_hour"`
	IntervalMinutes int    `toml:"interval_minutes"`
	DefaultCapacity int    `toml:"default_capacity"`
	CronEnabled     bool   `toml:"cron_enabled"`
	CronSpec        string `toml:"cron_spec"`
}

// Window собирает domain.SlotWindow из конфигурации (без даты начала)
func (c SlotsConfig) Window() domain.SlotWindow {
	return domain.SlotWindow{
		Days:            c.WindowDays,
		OpenHour:        c.OpenHour,
		CloseHour:       c.CloseHour,
		IntervalMinutes: c.IntervalMinutes,
		DefaultCapacity: c.DefaultCapacity,
	}
}

// MailerConfig настройки отправки подтверждений
type MailerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
}

// Load читает конфигурацию из TOML файла и заполняет значения по умолчанию
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "appointment-service"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Redis.TTLSeconds == 0 {
		c.Redis.TTLSeconds = 30
	}
	if c.Estimator.ActiveCounters == 0 {
		c.Estimator.ActiveCounters = 3
	}
	if c.Slots.WindowDays == 0 {
		c.Slots.WindowDays = domain.DefaultWindowDays
	}
	if c.Slots.OpenHour == 0 {
		c.Slots.OpenHour = domain.DefaultOpenHour
	}
	if c.Slots.CloseHour == 0 {
		c.Slots.CloseHour = domain.DefaultCloseHour
	}
	if c.Slots.IntervalMinutes == 0 {
		c.Slots.IntervalMinutes = domain.DefaultIntervalMinutes
	}
	if c.Slots.DefaultCapacity == 0 {
		c.Slots.DefaultCapacity = domain.DefaultSlotCapacity
	}
	if c.Slots.CronSpec == "" {
		c.Slots.CronSpec = "0 3 * * *" // ежедневно в 03:00
	}
}

func (c *Config) validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.dbname is required")
	}
	if c.Slots.OpenHour < 0 || c.Slots.CloseHour > 24 || c.Slots.OpenHour >= c.Slots.CloseHour {
		return fmt.Errorf("config: invalid slots working hours %d-%d", c.Slots.OpenHour, c.Slots.CloseHour)
	}
	if c.Slots.IntervalMinutes < domain.MinIntervalMinutes || c.Slots.IntervalMinutes > domain.MaxIntervalMinutes {
		return fmt.Errorf("config: slots.interval_minutes out of range: %d", c.Slots.IntervalMinutes)
	}
	if c.Slots.DefaultCapacity < domain.MinSlotCapacity || c.Slots.DefaultCapacity > domain.MaxSlotCapacity {
		return fmt.Errorf("config: slots.default_capacity out of range: %d", c.Slots.DefaultCapacity)
	}
	return nil
}
