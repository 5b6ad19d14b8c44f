package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all service configuration.
type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Ledger struct {
		Backend string `yaml:"backend"` // "file" or "postgres"
		Path    string `yaml:"path"`    // file backend only
	} `yaml:"ledger"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`

	Cache struct {
		Enabled    bool   `yaml:"enabled"`
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		KeyPrefix  string `yaml:"key_prefix"`
		KeySuffix  string `yaml:"key_suffix"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"cache"`

	Notifier struct {
		Backend     string `yaml:"backend"` // "log" or "mqtt"
		Broker      string `yaml:"broker"`
		ClientID    string `yaml:"client_id"`
		Username    string `yaml:"username"`
		Password    string `yaml:"password"`
		TopicPrefix string `yaml:"topic_prefix"`
		QoS         int    `yaml:"qos"`
	} `yaml:"notifier"`
}

// Load reads config from a YAML file (if present), then applies
// environment variable overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	// Defaults
	cfg.HTTP.Addr = ":8080"
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	cfg.Ledger.Backend = "file"
	cfg.Ledger.Path = "notifications.json"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "fallvision"
	cfg.Database.SSLMode = "disable"
	cfg.Cache.Addr = "localhost:6379"
	cfg.Cache.KeyPrefix = "fallvision:patient:"
	cfg.Cache.KeySuffix = ":status"
	cfg.Cache.TTLSeconds = 30
	cfg.Notifier.Backend = "log"
	cfg.Notifier.ClientID = "fallvision-alarm"
	cfg.Notifier.TopicPrefix = "fallvision/alerts"
	cfg.Notifier.QoS = 1

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	// Environment variable overrides
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("LEDGER_BACKEND"); v != "" {
		cfg.Ledger.Backend = v
	}
	if v := os.Getenv("LEDGER_PATH"); v != "" {
		cfg.Ledger.Path = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Database.Port)
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Database = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Cache.DB)
	}
	if v := os.Getenv("NOTIFIER_BACKEND"); v != "" {
		cfg.Notifier.Backend = v
	}
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		cfg.Notifier.Broker = v
	}
	if v := os.Getenv("MQTT_CLIENT_ID"); v != "" {
		cfg.Notifier.ClientID = v
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		cfg.Notifier.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		cfg.Notifier.Password = v
	}
	if v := os.Getenv("MQTT_TOPIC_PREFIX"); v != "" {
		cfg.Notifier.TopicPrefix = v
	}

	return cfg, nil
}

// DatabaseDSN builds the Postgres connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}
