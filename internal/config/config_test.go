package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9090

[database]
host = "localhost"
port = 5432
user = "app"
password = "secret"
dbname = "appointments"

[redis]
enabled = true
addr = "localhost:6379"
ttl_seconds = 15

[estimator]
model_path = "models/wait_time_model.json"
active_counters = 5

[slots]
window_days = 14
open_hour = 9
close_hour = 18
interval_minutes = 20
default_capacity = 4
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 15, cfg.Redis.TTLSeconds)
	assert.Equal(t, 5, cfg.Estimator.ActiveCounters)
	assert.Equal(t, 14, cfg.Slots.WindowDays)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[database]
host = "localhost"
dbname = "appointments"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "appointment-service", cfg.Metrics.ServiceName)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 30, cfg.Redis.TTLSeconds)
	assert.Equal(t, 3, cfg.Estimator.ActiveCounters)
	assert.Equal(t, domain.DefaultWindowDays, cfg.Slots.WindowDays)
	assert.Equal(t, domain.DefaultOpenHour, cfg.Slots.OpenHour)
	assert.Equal(t, domain.DefaultCloseHour, cfg.Slots.CloseHour)
	assert.Equal(t, "0 3 * * *", cfg.Slots.CronSpec)
}

func TestLoad_MissingDatabaseHost(t *testing.T) {
	path := writeConfig(t, `
[database]
dbname = "appointments"
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidWorkingHours(t *testing.T) {
	path := writeConfig(t, `
[database]
host = "localhost"
dbname = "appointments"

[slots]
open_hour = 18
close_hour = 9
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_IntervalOutOfRange(t *testing.T) {
	path := writeConfig(t, `
[database]
host = "localhost"
dbname = "appointments"

[slots]
interval_minutes = 3
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5432, User: "app", Password: "secret",
		DBName: "appointments", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=app password=secret dbname=appointments sslmode=disable",
		cfg.DSN())
}

func TestSlotsConfig_Window(t *testing.T) {
	cfg := SlotsConfig{
		WindowDays: 7, OpenHour: 9, CloseHour: 18,
		IntervalMinutes: 20, DefaultCapacity: 4,
	}
	window := cfg.Window()
	assert.Equal(t, 7, window.Days)
	assert.Equal(t, 9, window.OpenHour)
	assert.Equal(t, 18, window.CloseHour)
	assert.Equal(t, 20, window.IntervalMinutes)
	assert.Equal(t, 4, window.DefaultCapacity)
}
