package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "file", cfg.Ledger.Backend)
	assert.Equal(t, "notifications.json", cfg.Ledger.Path)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Cache.Addr)
	assert.Equal(t, "fallvision:patient:", cfg.Cache.KeyPrefix)
	assert.Equal(t, ":status", cfg.Cache.KeySuffix)
	assert.Equal(t, 30, cfg.Cache.TTLSeconds)
	assert.Equal(t, "log", cfg.Notifier.Backend)
	assert.Equal(t, 1, cfg.Notifier.QoS)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
http:
  addr: ":9090"
log:
  level: debug
  format: console
ledger:
  backend: postgres
database:
  host: db.internal
  port: 5433
  user: alarm
  password: secret
  database: fallvision_prod
  sslmode: require
cache:
  enabled: true
  addr: redis.internal:6379
notifier:
  backend: mqtt
  broker: tcp://mqtt.internal:1883
  topic_prefix: prod/alerts
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "postgres", cfg.Ledger.Backend)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "redis.internal:6379", cfg.Cache.Addr)
	assert.Equal(t, "mqtt", cfg.Notifier.Backend)
	assert.Equal(t, "tcp://mqtt.internal:1883", cfg.Notifier.Broker)
	assert.Equal(t, "prod/alerts", cfg.Notifier.TopicPrefix)

	// Unset sections keep their defaults.
	assert.Equal(t, "notifications.json", cfg.Ledger.Path)
	assert.Equal(t, 30, cfg.Cache.TTLSeconds)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LEDGER_BACKEND", "postgres")
	t.Setenv("DB_HOST", "envdb")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "envredis:6379")
	t.Setenv("NOTIFIER_BACKEND", "mqtt")
	t.Setenv("MQTT_BROKER", "tcp://envmqtt:1883")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "postgres", cfg.Ledger.Backend)
	assert.Equal(t, "envdb", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "envredis:6379", cfg.Cache.Addr)
	assert.Equal(t, "mqtt", cfg.Notifier.Backend)
	assert.Equal(t, "tcp://envmqtt:1883", cfg.Notifier.Broker)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  addr: \":9090\"\n"), 0o644))

	t.Setenv("HTTP_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: [not a mapping"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=fallvision sslmode=disable",
		cfg.DatabaseDSN(),
	)
}
