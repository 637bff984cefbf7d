package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Store    StoreConfig    `mapstructure:"store"`
	Backfill BackfillConfig `mapstructure:"backfill"`
	NATS     NATSConfig     `mapstructure:"nats"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	BusyTimeout     time.Duration `mapstructure:"busy_timeout"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// StoreConfig locates the partitioned columnar store on disk.
type StoreConfig struct {
	Root string `mapstructure:"root"`
}

type BackfillConfig struct {
	Vendor        string        `mapstructure:"vendor"`
	Feed          string        `mapstructure:"feed"`
	ToleranceDays int           `mapstructure:"tolerance_days"`
	RetryCount    int           `mapstructure:"retry_count"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
}

type NATSConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/jobs.db")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 8)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.busy_timeout", 5*time.Second)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("store.root", "./data/bars")
	v.SetDefault("backfill.vendor", "yfinance")
	v.SetDefault("backfill.feed", "bars_1d")
	v.SetDefault("backfill.tolerance_days", 1)
	v.SetDefault("backfill.retry_count", 3)
	v.SetDefault("backfill.retry_backoff", 5*time.Minute)
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject_prefix", "tickvault.jobs")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for deployment overrides
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.path", "DB_PATH")
	v.BindEnv("database.dsn", "DB_DSN")
	v.BindEnv("store.root", "STORE_ROOT")
	v.BindEnv("backfill.vendor", "BACKFILL_VENDOR")
	v.BindEnv("nats.enabled", "NATS_ENABLED")
	v.BindEnv("nats.url", "NATS_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// DSNString returns the connection string for the configured driver.
// For sqlite this is the file path; for postgres the explicit DSN.
func (c *DatabaseConfig) DSNString() string {
	if c.Driver == "postgres" {
		return c.DSN
	}
	return c.Path
}
